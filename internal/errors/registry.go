package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Reactive (R001-R099)
	// ============================================

	"R001": {
		Category: CategoryReactive,
		Message:  "Avoid adding or deleting reactive properties on root state at runtime",
		Detail:   "Root state fields must be declared upfront in the data option. Set the field to a zero value instead of deleting it.",
	},
	"R002": {
		Category: CategoryReactive,
		Message:  "Cannot observe a frozen container",
		Detail:   "The value was frozen before observation. Its fields will not be reactive.",
	},
	"R003": {
		Category: CategoryReactive,
		Message:  "Cannot set or delete a reactive property on a non-container value",
		Detail:   "Set and Delete only accept *reactive.Object and *reactive.List targets.",
	},
	"R004": {
		Category: CategoryReactive,
		Message:  "List index out of range",
		Detail:   "Delete on a list requires an existing index.",
	},
	"R005": {
		Category: CategoryReactive,
		Message:  "Cannot mutate a frozen container",
		Detail:   "The container was frozen. The mutation was ignored.",
	},

	// ============================================
	// Watchers and scheduler (W001-W099, S001-S099)
	// ============================================

	"W001": {
		Category: CategoryReactive,
		Message:  "Error in watcher getter",
	},
	"W002": {
		Category: CategoryReactive,
		Message:  "Error in watcher callback",
	},
	"W003": {
		Category: CategoryReactive,
		Message:  "Failed watching path",
		Detail:   "Watcher paths only accept simple dot-delimited keys. Use a function for full control.",
	},
	"S001": {
		Category: CategoryScheduler,
		Message:  "You may have an infinite update loop",
		Detail:   "A watcher re-scheduled itself more times than the per-flush limit allows. Further reschedules are dropped for this flush.",
	},
	"S002": {
		Category: CategoryScheduler,
		Message:  "Error in nextTick callback",
	},

	// ============================================
	// Patch and hydration (V001-V099)
	// ============================================

	"V001": {
		Category: CategoryPatch,
		Message:  "Duplicate keys detected",
		Detail:   "Sibling vnodes share a key. This may cause an update error.",
	},
	"V002": {
		Category: CategoryHydration,
		Message:  "The rendered virtual tree does not match the existing content",
		Detail:   "Bailing hydration and performing a full render.",
	},
	"V003": {
		Category: CategoryPatch,
		Message:  "Unknown custom element",
		Detail:   "Did you register the component correctly? For recursive components, make sure to provide the name option.",
	},

	// ============================================
	// Component (C001-C099)
	// ============================================

	"C001": {
		Category: CategoryComponent,
		Message:  "Error in render",
	},
	"C002": {
		Category: CategoryComponent,
		Message:  "Error in lifecycle hook",
	},
	"C003": {
		Category: CategoryComponent,
		Message:  "Error in errorCaptured hook",
	},
	"C004": {
		Category: CategoryComponent,
		Message:  "Failed to resolve async component",
	},
	"C005": {
		Category: CategoryComponent,
		Message:  "Invalid component option",
	},
	"C006": {
		Category: CategoryComponent,
		Message:  "Error in event handler",
	},
	"C007": {
		Category: CategoryComponent,
		Message:  "Error in directive hook",
	},

	// ============================================
	// Protocol and config (P001-P099, F001-F099)
	// ============================================

	"P001": {
		Category: CategoryProtocol,
		Message:  "Malformed frame from peer",
		Detail:   "The frame was dropped and the session continues.",
	},
	"F001": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},
	"F002": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered error codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

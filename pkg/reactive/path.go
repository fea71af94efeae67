package reactive

import (
	"strconv"
	"strings"
)

// Getter is anything a dotted path can be resolved against: an Object or
// a component instance.
type Getter interface {
	Get(key string) any
}

// ParsePath compiles a dotted path such as "user.address.city" into a
// getter. List segments are integer indexes. It returns false when the
// path contains characters outside identifiers, digits, '.' and '$'.
func ParsePath(path string) (func(root Getter) any, bool) {
	for _, r := range path {
		if !(r == '.' || r == '$' || r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return nil, false
		}
	}
	segments := strings.Split(path, ".")
	return func(root Getter) any {
		var cur any = root
		for _, seg := range segments {
			switch c := cur.(type) {
			case *List:
				i, err := strconv.Atoi(seg)
				if err != nil {
					return nil
				}
				cur = c.At(i)
			case Getter:
				if c == nil {
					return nil
				}
				cur = c.Get(seg)
			default:
				return nil
			}
		}
		return cur
	}, true
}

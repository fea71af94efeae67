package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/internal/publish"
	"github.com/vango-dev/reactor/pkg/component"
	"github.com/vango-dev/reactor/pkg/dom"
	"github.com/vango-dev/reactor/pkg/protocol"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/remote"
	"github.com/vango-dev/reactor/pkg/vdom"
)

func renderCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		out    string
		frames bool
		ssr    bool
		target string
	)

	cmd := &cobra.Command{
		Use:   "render [app]",
		Short: "Render an example app to HTML",
		Long: `Mount an example app into an in-memory document and print its HTML.

With --frames the mutation ops the first render produced are printed
instead, one per line, as a remote client would receive them.

With --publish the full server-rendered page is written as
<app>/index.html to a directory or an s3://bucket/prefix target.

Examples:
  reactor render counter
  reactor render todos --ssr --out todos.html
  reactor render todos --frames
  reactor render todos --publish s3://my-bucket/apps`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: appNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			name := "counter"
			if len(args) == 1 {
				name = args[0]
			}
			opts, err := lookupApp(name)
			if err != nil {
				return err
			}

			if target != "" {
				return publishApp(cmd, cfg, name, opts, target)
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			r := renderApp(cfg, opts, ssr)
			if frames {
				return writeOps(w, r.frame)
			}
			_, err = io.WriteString(w, r.html+"\n")
			if err == nil && out != "" {
				success("Wrote %s", out)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&frames, "frames", false, "Print the recorded mutation ops")
	cmd.Flags().BoolVar(&ssr, "ssr", false, "Mark the root as server-rendered for hydration")
	cmd.Flags().StringVar(&target, "publish", "", "Publish the page to a directory or s3://bucket/prefix")

	return cmd
}

// publishApp writes the server-rendered page for name to target.
func publishApp(cmd *cobra.Command, cfg *config.Config, name string, opts *component.Options, target string) error {
	store, err := publish.Open(target, cfg.Publish)
	if err != nil {
		return err
	}
	var page bytes.Buffer
	if err := writePage(&page, name, renderApp(cfg, opts, true).html); err != nil {
		return err
	}
	key := name + "/index.html"
	if err := store.Put(cmd.Context(), key, "text/html; charset=utf-8", page.Bytes()); err != nil {
		return err
	}
	success("Published %s", store.Location(key))
	return nil
}

type rendered struct {
	html  string
	frame *protocol.MutationFrame
}

// renderApp mounts opts once and tears it down again.
func renderApp(cfg *config.Config, opts *component.Options, ssr bool) rendered {
	doc := dom.New()
	container := doc.NewElement("div")
	rec := remote.NewRecorder(doc)
	rec.ID(container)

	sched := reactive.NewScheduler(reactive.WithMaxUpdateCount(cfg.Scheduler.MaxUpdateCount))
	vm := component.NewApp(opts, component.InstanceOptions{
		Ops:            rec,
		PatcherOptions: []vdom.PatcherOption{vdom.AddModules(rec.Module())},
		Scheduler:      sched,
	})
	vm.MountInto(container)
	defer vm.Destroy()

	if ssr {
		if root := container.Children(); len(root) > 0 {
			doc.SetAttribute(root[0], vdom.SSRAttr, "true")
		}
	}
	return rendered{
		html:  container.InnerHTML(),
		frame: rec.Drain(),
	}
}

func writeOps(w io.Writer, mf *protocol.MutationFrame) error {
	if mf == nil {
		return nil
	}
	for _, op := range mf.Ops {
		if _, err := fmt.Fprintln(w, op.String()); err != nil {
			return err
		}
	}
	return nil
}

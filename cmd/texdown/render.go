package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"

	"github.com/db47h/texdown/internal/logging/logfields"
	"github.com/db47h/texdown/parser"
	"github.com/db47h/texdown/render"
	"github.com/db47h/texdown/rules"
)

func newRenderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [file...]",
		Short: "Render documents",
		Long: `Render one or more texdown documents. Reads stdin when no file is given.

Formats:
  html    HTML fragment
  text    formatted for the terminal
  events  parser event trace
  tree    document tree

Without --out, results are written to stdout in argument order. With --out,
each file is rendered into the given directory with the extension of the
output format.`,
		RunE: a.runRender,
	}
	fs := cmd.Flags()
	fs.StringP("format", "f", defaultFormat, "output format ("+strings.Join(formats, ", ")+")")
	fs.StringP("out", "o", "", "output directory")
	fs.IntP("workers", "w", 0, "concurrent renderers (default: based on GOMAXPROCS)")
	fs.String("highlight", "", "chroma style for diagram source (e.g. monokai)")
	fs.Int("width", defaultWidth, "line width of text output")
	addRulesFlag(fs)
	return cmd
}

// outputExt maps formats to the extension of files written with --out.
var outputExt = map[string]string{
	formatHTML:   ".html",
	formatText:   ".txt",
	formatEvents: ".events",
	formatTree:   ".tree",
}

func (a *app) runRender(cmd *cobra.Command, args []string) error {
	tab, err := a.table()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	if a.cfg.Out != "" {
		if err := os.MkdirAll(a.cfg.Out, 0o755); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
	}

	undo, _ := maxprocs.Set(maxprocs.Logger(a.log.Debugf))
	defer undo()

	workers := resolveWorkers(a.cfg.Workers)
	a.log.WithField(logfields.Workers, workers).
		WithField(logfields.Format, a.cfg.Format).
		Debug("Rendering")

	results := make([]bytes.Buffer, len(args))
	profile := termenv.Ascii
	if a.cfg.Out == "" {
		profile = termenv.NewOutput(cmd.OutOrStdout()).EnvColorProfile()
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(workers)
	for i, name := range args {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := a.renderFile(cmd, tab, name, profile, &results[i]); err != nil {
				return err
			}
			if a.cfg.Out != "" {
				return a.writeResult(name, &results[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if a.cfg.Out != "" {
		return nil
	}
	for i := range results {
		if _, err := results[i].WriteTo(cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
	}
	return nil
}

// resolveWorkers determines the number of concurrent renderers.
// Priority: explicit flag > GOMAXPROCS-based calculation.
func resolveWorkers(n int) int {
	if n > 0 {
		return n
	}
	return max(1, min(runtime.GOMAXPROCS(0), maxWorkers))
}

// renderFile renders a single document into w using the configured format.
func (a *app) renderFile(cmd *cobra.Command, tab *rules.Table, name string, profile termenv.Profile, w *bytes.Buffer) error {
	src, err := readSource(cmd, name)
	if err != nil {
		return err
	}
	log := a.log.WithField(logfields.File, name)
	p := parser.New(parser.WithTable(tab), parser.WithLogger(log))
	if err := renderDocument(p, src, a.cfg, profile, w); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Info("Rendered")
	return nil
}

// renderDocument parses src with p and writes it to w in cfg.Format.
func renderDocument(p *parser.Parser, src string, cfg *Config, profile termenv.Profile, w io.Writer) error {
	switch cfg.Format {
	case formatHTML:
		var opts []render.HTMLOption
		if cfg.Highlight != "" {
			opts = append(opts, render.WithHighlight(cfg.Highlight))
		}
		h, err := render.NewHTML(opts...)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConfig, err)
		}
		if err := p.Run(src, h); err != nil {
			return err
		}
		if err := h.Err(); err != nil {
			return err
		}
		_, err = h.WriteTo(w)
		return err
	case formatText:
		opts := []render.TerminalOption{render.WithWidth(cfg.Width), render.WithColorProfile(profile)}
		if cfg.Highlight != "" {
			opts = append(opts, render.WithDiagramHighlight(cfg.Highlight))
		}
		t := render.NewTerminal(w, opts...)
		if err := p.Run(src, t); err != nil {
			return err
		}
		return t.Err()
	case formatEvents:
		var r render.Recorder
		if err := p.Run(src, &r); err != nil {
			return err
		}
		_, err := io.WriteString(w, r.String()+"\n")
		return err
	case formatTree:
		var t render.Tree
		if err := p.Run(src, &t); err != nil {
			return err
		}
		_, err := io.WriteString(w, t.Root.String())
		return err
	}
	return fmt.Errorf("%w: unknown format %q", ErrConfig, cfg.Format)
}

// writeResult writes the rendering of the input file name into the output
// directory.
func (a *app) writeResult(name string, b *bytes.Buffer) error {
	base := "stdin"
	if name != "-" {
		base = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	path := filepath.Join(a.cfg.Out, base+outputExt[a.cfg.Format])
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	a.log.WithField(logfields.File, path).Debug("Wrote output")
	return nil
}

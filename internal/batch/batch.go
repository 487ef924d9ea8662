// Package batch renders many diagram sources to files concurrently.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/ziadkadry99/usediagram/internal/export"
	"github.com/ziadkadry99/usediagram/internal/inputs"
	"github.com/ziadkadry99/usediagram/internal/markdown"
	"github.com/ziadkadry99/usediagram/internal/plantuml"
	"github.com/ziadkadry99/usediagram/internal/render"
	"github.com/ziadkadry99/usediagram/internal/sanitize"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatHTML = "html"
)

// ProgressFunc is called after each source is processed.
type ProgressFunc func(processed, total int, relPath string)

// Options configures a batch run.
type Options struct {
	Renderers   *render.Registry
	PNG         export.PNGFetcher // required for FormatPNG
	OutputDir   string
	Format      string
	Concurrency int
	Force       bool // re-render sources whose content is unchanged
	OnProgress  ProgressFunc
}

// Result holds what a batch run produced.
type Result struct {
	Written []string
	Skipped int
	Errors  []error
}

// Run renders every source into opts.OutputDir.
func Run(ctx context.Context, sources []inputs.Source, opts Options) (*Result, error) {
	if opts.Format == "" {
		opts.Format = FormatSVG
	}
	switch opts.Format {
	case FormatSVG, FormatHTML:
	case FormatPNG:
		if opts.PNG == nil {
			return nil, export.ErrPNGUnsupported
		}
	default:
		return nil, fmt.Errorf("unknown format %q", opts.Format)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	state, err := LoadState(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("loading render state: %w", err)
	}

	total := len(sources)
	sem := make(chan struct{}, opts.Concurrency)
	var mu sync.Mutex
	var processed int64
	result := &Result{}

	progress := func(relPath string) {
		count := atomic.AddInt64(&processed, 1)
		if opts.OnProgress != nil {
			opts.OnProgress(int(count), total, relPath)
		}
	}

	var wg sync.WaitGroup
	for _, src := range sources {
		key := stateKey(opts.Format, src.RelPath)
		mu.Lock()
		unchanged := !opts.Force && !state.IsChanged(key, src.ContentHash)
		if unchanged {
			result.Skipped++
		}
		mu.Unlock()
		if unchanged {
			progress(src.RelPath)
			continue
		}

		select {
		case <-ctx.Done():
			mu.Lock()
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", src.RelPath, ctx.Err()))
			mu.Unlock()
			progress(src.RelPath)
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(src inputs.Source) {
			defer wg.Done()
			defer func() { <-sem }()

			written, errs := processSource(ctx, src, opts)
			mu.Lock()
			result.Written = append(result.Written, written...)
			result.Errors = append(result.Errors, errs...)
			if len(errs) == 0 {
				state.FileHashes[key] = src.ContentHash
			}
			mu.Unlock()
			progress(src.RelPath)
		}(src)
	}
	wg.Wait()

	if err := state.Save(opts.OutputDir); err != nil {
		return result, fmt.Errorf("saving render state: %w", err)
	}
	return result, nil
}

func processSource(ctx context.Context, src inputs.Source, opts Options) ([]string, []error) {
	content, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, []error{fmt.Errorf("read %s: %w", src.RelPath, err)}
	}

	if src.Kind != inputs.KindMarkdown {
		ext := opts.Format
		if ext == FormatHTML {
			ext = FormatSVG
		}
		data, err := renderOne(ctx, src.Kind, string(content), ext, opts)
		if err != nil {
			return nil, []error{fmt.Errorf("%s: %w", src.RelPath, err)}
		}
		path, err := writeOutput(opts.OutputDir, inputs.OutputName(src.RelPath, 0, ext), data)
		if err != nil {
			return nil, []error{err}
		}
		return []string{path}, nil
	}

	if opts.Format == FormatHTML {
		return renderPage(ctx, src, content, opts)
	}

	var written []string
	var errs []error
	for _, b := range markdown.Extract(content) {
		data, err := renderOne(ctx, b.Kind, b.Source, opts.Format, opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s:%d: %w", src.RelPath, b.Line, err))
			continue
		}
		path, err := writeOutput(opts.OutputDir, inputs.OutputName(src.RelPath, b.Index, opts.Format), data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		written = append(written, path)
	}
	return written, errs
}

func renderPage(ctx context.Context, src inputs.Source, content []byte, opts Options) ([]string, []error) {
	path := filepath.Join(opts.OutputDir, filepath.FromSlash(inputs.OutputName(src.RelPath, 0, FormatHTML)))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, []error{err}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, []error{err}
	}
	defer f.Close()

	failed, err := markdown.RenderHTML(f, filepath.Base(src.RelPath), content, func(b markdown.Block) (string, error) {
		data, err := renderOne(ctx, b.Kind, b.Source, FormatSVG, opts)
		return string(data), err
	})
	if err != nil {
		return nil, []error{fmt.Errorf("%s: %w", src.RelPath, err)}
	}
	var errs []error
	for _, be := range failed {
		errs = append(errs, fmt.Errorf("%s: %w", src.RelPath, be))
	}
	return []string{path}, errs
}

// renderOne produces sanitized SVG or PNG bytes for one diagram.
func renderOne(ctx context.Context, kind, source, format string, opts Options) ([]byte, error) {
	if format == FormatPNG {
		if kind != render.KindPlantUML {
			return nil, export.ErrPNGUnsupported
		}
		token, err := plantuml.Encode(source)
		if err != nil {
			return nil, err
		}
		return opts.PNG.PNG(ctx, token)
	}

	r, ok := opts.Renderers.Get(kind)
	if !ok {
		return nil, fmt.Errorf("no renderer for %s", kind)
	}
	res, err := r.Render(ctx, source)
	if err != nil {
		return nil, err
	}
	svg, err := sanitize.SVG(res.Markup)
	if err != nil {
		return nil, errors.Join(render.ErrSyntax, err)
	}
	return []byte(svg), nil
}

func writeOutput(dir, name string, data []byte) (string, error) {
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

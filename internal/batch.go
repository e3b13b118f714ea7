package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/warrantdesk/internal/mcpserver"
	"github.com/starford/warrantdesk/internal/reviewservice"
	"github.com/starford/warrantdesk/internal/storage"
)

// RenderOptions selects what Render writes.
type RenderOptions struct {
	Input      string
	OutDir     string
	Individual bool
}

// Render loads a workbook and writes the consolidated report, plus one
// report per record when Individual is set. It returns the written paths.
func Render(ctx context.Context, ro RenderOptions, opts ...Option) ([]string, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	logger := app.logger()

	// Documents go to OutDir only.
	cfg := *app.config
	cfg.Export.Dir = ""

	comp, out, err := loadBatch(ctx, &cfg, logger, ro.Input, ro.OutDir)
	if err != nil {
		return nil, err
	}
	defer comp.Close()

	var written []string
	save := func(doc *reviewservice.Document) error {
		if err := out.Write(doc.Filename, doc.Data); err != nil {
			return err
		}
		written = append(written, filepath.Join(out.Root(), doc.Filename))
		return nil
	}

	doc, err := comp.svc.ConsolidatedReport(ctx)
	if err != nil {
		return nil, err
	}
	if err := save(doc); err != nil {
		return nil, err
	}

	if ro.Individual {
		recs, err := comp.svc.ListRecords(ctx, "")
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			doc, err := comp.svc.IndividualReport(ctx, rec.ID)
			if err != nil {
				return written, fmt.Errorf("render %s: %w", rec.DisplayName(), err)
			}
			if err := save(doc); err != nil {
				return written, err
			}
		}
	}

	logger.Info("Reports rendered",
		slog.String("out_dir", out.Root()),
		slog.Int("files", len(written)))
	return written, nil
}

// ServeMCP loads a workbook and serves the MCP tools over stdio. Documents
// produced by tools are written to outDir.
func ServeMCP(ctx context.Context, input, outDir string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	comp, out, err := loadBatch(ctx, app.config, logger, input, outDir)
	if err != nil {
		return err
	}
	defer comp.Close()

	logger.Info("MCP server starting", slog.String("input", input), slog.String("out_dir", out.Root()))
	return mcpserver.New(comp.svc, out).ServeStdio()
}

// loadBatch builds the components, loads input into the session and opens
// the output directory.
func loadBatch(ctx context.Context, cfg *Config, logger *slog.Logger, input, outDir string) (*components, *storage.FS, error) {
	comp, err := newComponents(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(input)
	if err != nil {
		comp.Close()
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	if _, err := comp.svc.LoadWorkbook(ctx, input, f); err != nil {
		comp.Close()
		return nil, nil, fmt.Errorf("load %s: %w", input, err)
	}

	out, err := openDir(outDir)
	if err != nil {
		comp.Close()
		return nil, nil, fmt.Errorf("init output dir: %w", err)
	}
	return comp, out, nil
}

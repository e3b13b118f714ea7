package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/starford/warrantdesk/internal/metrics"
	"github.com/starford/warrantdesk/internal/report"
	"github.com/starford/warrantdesk/internal/reviewservice"
	"github.com/starford/warrantdesk/internal/session"
	"github.com/starford/warrantdesk/internal/storage"
)

var errConfigRequired = errors.New("config is required")

// components are the pieces shared by every command.
type components struct {
	store    *session.Store
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	svc      *reviewservice.Service
}

func (c *components) Close() error {
	return c.store.Close()
}

// newComponents opens the session store and builds the review service.
// Extra service options (such as an event sink) are appended last.
func newComponents(cfg *Config, logger *slog.Logger, extra ...reviewservice.Option) (*components, error) {
	store, err := session.Open(cfg.Session.DSN)
	if err != nil {
		return nil, fmt.Errorf("init session: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	renderer := report.NewRenderer(
		report.WithAuthor(cfg.Report.Author),
		report.WithJustify(cfg.Report.Justify),
		report.WithLogger(logger),
	)

	opts := []reviewservice.Option{
		reviewservice.WithMetrics(m),
		reviewservice.WithLogger(logger),
	}
	if cfg.Export.Dir != "" {
		archive, err := openDir(cfg.Export.Dir)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("init export dir: %w", err)
		}
		opts = append(opts, reviewservice.WithArchive(archive))
	}
	opts = append(opts, extra...)

	return &components{
		store:    store,
		registry: reg,
		metrics:  m,
		svc:      reviewservice.NewService(store, renderer, opts...),
	}, nil
}

// openDir creates dir if needed and returns a storage rooted at it.
func openDir(dir string) (*storage.FS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return storage.NewFS(dir)
}

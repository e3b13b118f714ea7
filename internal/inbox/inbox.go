// Package inbox watches a drop directory and loads workbooks placed in it
// into the review session.
package inbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/warrantdesk/internal/checksum"
	"github.com/starford/warrantdesk/internal/session"
	"github.com/starford/warrantdesk/internal/storage"
)

// DefaultDebounce is how long the inbox waits after the last change to a
// workbook before loading it. Spreadsheet editors write in several steps.
const DefaultDebounce = 300 * time.Millisecond

const (
	workbookExt = ".xlsx"
	lockPrefix  = "~$"
)

// Loader replaces the session with the given workbook.
type Loader interface {
	LoadWorkbook(ctx context.Context, source string, r io.Reader) (*session.Info, error)
}

// Inbox loads workbooks dropped into a directory.
type Inbox struct {
	dir      string
	store    storage.Provider
	loader   Loader
	logger   *slog.Logger
	debounce time.Duration

	// checksum of the last loaded workbook; identical rewrites are skipped
	lastSum string
}

// New creates an inbox over dir, creating the directory if needed.
func New(dir string, loader Loader, logger *slog.Logger) (*Inbox, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("inbox: create dir: %w", err)
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		return nil, fmt.Errorf("inbox: %w", err)
	}
	return &Inbox{
		dir:      store.Root(),
		store:    store,
		loader:   loader,
		logger:   logger,
		debounce: DefaultDebounce,
	}, nil
}

// SetDebounce overrides DefaultDebounce.
func (in *Inbox) SetDebounce(d time.Duration) {
	in.debounce = d
}

// LoadLatest loads the most recently modified workbook in the inbox. An
// empty inbox is not an error.
func (in *Inbox) LoadLatest(ctx context.Context) error {
	files, err := in.store.List("", workbookExt)
	if err != nil {
		return fmt.Errorf("inbox: list: %w", err)
	}
	latest := ""
	var latestAt time.Time
	for _, f := range files {
		if !candidate(f.Path) {
			continue
		}
		if latest == "" || f.UpdatedAt.After(latestAt) {
			latest, latestAt = f.Path, f.UpdatedAt
		}
	}
	if latest == "" {
		in.logger.Info("inbox: no workbook to load", slog.String("dir", in.dir))
		return nil
	}
	return in.load(ctx, latest)
}

// Watch processes file events until ctx is cancelled. Load failures are
// logged and do not stop the watcher.
func (in *Inbox) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(in.dir); err != nil {
		return err
	}
	in.logger.Info("inbox: watching", slog.String("dir", in.dir))

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		pending string
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			in.logger.Info("inbox: stopped")
			return nil

		case <-timerCh:
			timerCh = nil
			if err := in.load(ctx, pending); err != nil {
				in.logger.Warn("inbox: load failed",
					slog.String("file", pending),
					slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			rel, relErr := filepath.Rel(in.dir, ev.Name)
			if relErr != nil || !candidate(rel) {
				continue
			}
			pending = rel
			if timer == nil {
				timer = time.NewTimer(in.debounce)
			} else {
				timer.Reset(in.debounce)
			}
			timerCh = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			in.logger.Error("inbox: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

func (in *Inbox) load(ctx context.Context, rel string) error {
	data, err := in.store.Read(rel)
	if err != nil {
		return err
	}
	sum := checksum.Sum(data)
	if sum == in.lastSum {
		in.logger.Debug("inbox: workbook unchanged", slog.String("file", rel))
		return nil
	}
	if _, err := in.loader.LoadWorkbook(ctx, rel, bytes.NewReader(data)); err != nil {
		return err
	}
	in.lastSum = sum
	return nil
}

// candidate reports whether a path names a loadable workbook: a top-level
// .xlsx that is neither an Excel lock file nor a scratch file.
func candidate(rel string) bool {
	name := filepath.Base(rel)
	return rel == name &&
		strings.EqualFold(filepath.Ext(name), workbookExt) &&
		!strings.HasPrefix(name, lockPrefix) &&
		!strings.HasPrefix(name, storage.TempPrefix)
}

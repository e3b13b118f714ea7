package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.IncrementWorkbookLoad("ok")
	m.ObserveDocument("individual", time.Millisecond)
	m.IncrementNotesUpdated()
	m.IncrementPhotosAttached()
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementWorkbookLoad("ok")
	m.IncrementWorkbookLoad("ok")
	m.IncrementWorkbookLoad("invalid")
	m.ObserveDocument("consolidated", 10*time.Millisecond)
	m.IncrementNotesUpdated()

	if got := testutil.ToFloat64(m.WorkbooksLoaded.WithLabelValues("ok")); got != 2 {
		t.Errorf("ok loads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Documents.WithLabelValues("consolidated")); got != 1 {
		t.Errorf("consolidated docs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.NotesUpdated); got != 1 {
		t.Errorf("notes updated = %v, want 1", got)
	}
}

func TestSeparateRegistries(t *testing.T) {
	// Registering twice on distinct registries must not panic.
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}

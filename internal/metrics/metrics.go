// Package metrics exposes Prometheus instrumentation for the review service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the review service collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// Workbook loads by result ("ok", "invalid", "error")
	WorkbooksLoaded *prometheus.CounterVec

	// Generated documents by kind ("individual", "consolidated", "workbook")
	Documents *prometheus.CounterVec

	// Render duration by document kind
	RenderLatency *prometheus.HistogramVec

	NotesUpdated   prometheus.Counter
	PhotosAttached prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		WorkbooksLoaded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "warrantdesk_workbooks_loaded_total",
			Help: "Workbook load attempts by result",
		}, []string{"result"}),

		Documents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "warrantdesk_documents_generated_total",
			Help: "Generated report and export documents by kind",
		}, []string{"kind"}),

		RenderLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "warrantdesk_render_duration_seconds",
			Help:    "Duration of document rendering by kind",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),

		NotesUpdated: f.NewCounter(prometheus.CounterOpts{
			Name: "warrantdesk_notes_updated_total",
			Help: "Notes edits saved by the operator",
		}),

		PhotosAttached: f.NewCounter(prometheus.CounterOpts{
			Name: "warrantdesk_photos_attached_total",
			Help: "Photos attached to records",
		}),
	}
}

// IncrementWorkbookLoad records a workbook load outcome.
func (m *Metrics) IncrementWorkbookLoad(result string) {
	if m != nil {
		m.WorkbooksLoaded.WithLabelValues(result).Inc()
	}
}

// ObserveDocument records a generated document and its render duration.
func (m *Metrics) ObserveDocument(kind string, d time.Duration) {
	if m != nil {
		m.Documents.WithLabelValues(kind).Inc()
		m.RenderLatency.WithLabelValues(kind).Observe(d.Seconds())
	}
}

// IncrementNotesUpdated counts a saved notes edit.
func (m *Metrics) IncrementNotesUpdated() {
	if m != nil {
		m.NotesUpdated.Inc()
	}
}

// IncrementPhotosAttached counts an attached photo.
func (m *Metrics) IncrementPhotosAttached() {
	if m != nil {
		m.PhotosAttached.Inc()
	}
}

// Package reviewservice coordinates the review session: workbook loading,
// notes and photo edits, report rendering and spreadsheet export.
package reviewservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder for DecodeConfig
	_ "image/png"  // register decoder for DecodeConfig
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/warrantdesk/internal/apperr"
	"github.com/starford/warrantdesk/internal/checksum"
	"github.com/starford/warrantdesk/internal/metrics"
	"github.com/starford/warrantdesk/internal/models"
	"github.com/starford/warrantdesk/internal/report"
	"github.com/starford/warrantdesk/internal/session"
	"github.com/starford/warrantdesk/internal/sse"
	"github.com/starford/warrantdesk/internal/storage"
	"github.com/starford/warrantdesk/internal/workbook"
)

// Output file names.
const (
	ConsolidatedFilename = "relatorio_completo.pdf"
	WorkbookFilename     = "mandados_atualizados.xlsx"

	pdfContentType  = "application/pdf"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Document kinds reported to metrics.
const (
	KindIndividual   = "individual"
	KindConsolidated = "consolidated"
	KindWorkbook     = "workbook"
)

// EventSink receives record change and archive notifications.
type EventSink interface {
	PublishRecordEvent(kind, id string)
	PublishDocumentArchived(file string)
}

// RecordDetail is a record plus the checksum of its current notes.
type RecordDetail struct {
	models.Record
	Checksum string `json:"checksum"`
}

// Document is a generated file ready for download.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Option configures a Service.
type Option func(*Service)

// WithArchive stores a copy of every generated document in p.
func WithArchive(p storage.Provider) Option {
	return func(s *Service) { s.archive = p }
}

// WithEvents sets the sink notified after every mutation.
func WithEvents(e EventSink) Option {
	return func(s *Service) { s.events = e }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service coordinates session, workbook and report operations.
type Service struct {
	store    *session.Store
	renderer *report.Renderer
	archive  storage.Provider
	events   EventSink
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewService creates a review service over store using renderer for PDFs.
func NewService(store *session.Store, renderer *report.Renderer, opts ...Option) *Service {
	s := &Service{
		store:    store,
		renderer: renderer,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// LoadWorkbook parses an .xlsx stream and replaces the current session.
// source is the original file name, kept for display.
func (s *Service) LoadWorkbook(ctx context.Context, source string, r io.Reader) (*session.Info, error) {
	sheet, err := workbook.Parse(r)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidWorkbook) {
			s.metrics.IncrementWorkbookLoad("invalid")
		} else {
			s.metrics.IncrementWorkbookLoad("error")
		}
		return nil, err
	}

	info := session.Info{
		ID:          uuid.NewString(),
		Source:      filepath.Base(source),
		SheetName:   sheet.SheetName,
		Header:      sheet.Header,
		NotesColumn: sheet.NotesColumn,
	}
	if err := s.store.Replace(ctx, info, sheet.Records); err != nil {
		s.metrics.IncrementWorkbookLoad("error")
		return nil, err
	}
	s.metrics.IncrementWorkbookLoad("ok")

	loaded, err := s.store.Info(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("workbook loaded",
		slog.String("session_id", loaded.ID),
		slog.String("source", loaded.Source),
		slog.Int("rows", loaded.Rows),
		slog.Int("records", loaded.Records),
	)
	s.publish(sse.KindSessionLoaded, loaded.ID)
	return loaded, nil
}

// Session returns the current session metadata or apperr.ErrNoSession.
func (s *Service) Session(ctx context.Context) (*session.Info, error) {
	return s.store.Info(ctx)
}

// ListRecords returns one entry per record, optionally filtered by query.
func (s *Service) ListRecords(ctx context.Context, query string) ([]models.Record, error) {
	if _, err := s.store.Info(ctx); err != nil {
		return nil, err
	}
	return s.store.List(ctx, query)
}

// GetRecord returns a record with the checksum of its notes.
func (s *Service) GetRecord(ctx context.Context, id string) (*RecordDetail, error) {
	if _, err := s.store.Info(ctx); err != nil {
		return nil, err
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return detail(rec), nil
}

// UpdateNotes replaces the notes of a record with optimistic concurrency:
// a non-empty ifMatch must equal the checksum of the current notes.
func (s *Service) UpdateNotes(ctx context.Context, id, notes, ifMatch string) (*RecordDetail, error) {
	current, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != current.Checksum {
		return nil, apperr.ErrConflict
	}
	if err := s.store.SetNotes(ctx, id, notes); err != nil {
		return nil, err
	}
	s.metrics.IncrementNotesUpdated()
	s.publish(sse.KindNotesUpdated, id)

	current.Notes = notes
	current.Checksum = checksum.Sum([]byte(notes))
	return current, nil
}

// AttachPhoto validates data as a JPEG or PNG image and attaches it to the
// record, replacing any previous photo.
func (s *Service) AttachPhoto(ctx context.Context, id string, data []byte) (*models.Photo, error) {
	if _, err := s.store.Info(ctx); err != nil {
		return nil, err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reviewservice: %w: %v", apperr.ErrInvalidImage, err)
	}
	var contentType string
	switch format {
	case "jpeg":
		contentType = "image/jpeg"
	case "png":
		contentType = "image/png"
	default:
		return nil, fmt.Errorf("reviewservice: %w: unsupported format %q", apperr.ErrInvalidImage, format)
	}

	photo := models.Photo{
		RecordID:    id,
		ContentType: contentType,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Data:        data,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.store.SavePhoto(ctx, photo); err != nil {
		return nil, err
	}
	s.metrics.IncrementPhotosAttached()
	s.publish(sse.KindPhotoUpdated, id)
	return &photo, nil
}

// Photo returns the photo attached to a record.
func (s *Service) Photo(ctx context.Context, id string) (*models.Photo, error) {
	if _, err := s.store.Info(ctx); err != nil {
		return nil, err
	}
	return s.store.Photo(ctx, id)
}

// RemovePhoto detaches the photo of a record.
func (s *Service) RemovePhoto(ctx context.Context, id string) error {
	if _, err := s.store.Info(ctx); err != nil {
		return err
	}
	if err := s.store.DeletePhoto(ctx, id); err != nil {
		return err
	}
	s.publish(sse.KindPhotoRemoved, id)
	return nil
}

// IndividualReport renders the PDF report of one record.
func (s *Service) IndividualReport(ctx context.Context, id string) (*Document, error) {
	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	var photo *models.Photo
	if rec.HasPhoto {
		photo, err = s.store.Photo(ctx, id)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}

	start := time.Now()
	data, err := s.renderer.Individual(rec.Record, photo)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDocument(KindIndividual, time.Since(start))

	return s.finish(Document{
		Filename:    IndividualFilename(rec.CaseID),
		ContentType: pdfContentType,
		Data:        data,
	}), nil
}

// ConsolidatedReport renders every loaded row into one PDF.
func (s *Service) ConsolidatedReport(ctx context.Context) (*Document, error) {
	if _, err := s.store.Info(ctx); err != nil {
		return nil, err
	}
	recs, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := s.renderer.Consolidated(recs)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDocument(KindConsolidated, time.Since(start))

	return s.finish(Document{
		Filename:    ConsolidatedFilename,
		ContentType: pdfContentType,
		Data:        data,
	}), nil
}

// ExportWorkbook writes the loaded rows back to an .xlsx with the current
// notes merged into the notes column.
func (s *Service) ExportWorkbook(ctx context.Context) (*Document, error) {
	info, err := s.store.Info(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := workbook.Export(info.Header, info.NotesColumn, recs)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDocument(KindWorkbook, time.Since(start))

	return s.finish(Document{
		Filename:    WorkbookFilename,
		ContentType: xlsxContentType,
		Data:        data,
	}), nil
}

// IndividualFilename returns the download name of a record report. Characters
// outside [A-Za-z0-9._-] in the case number are replaced by underscores.
func IndividualFilename(caseID string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, strings.TrimSpace(caseID))
	return "relatorio_" + clean + ".pdf"
}

// finish archives doc when an archive is configured. Archive failures are
// logged; the document is still returned.
func (s *Service) finish(doc Document) *Document {
	if s.archive != nil {
		if err := s.archive.Write(doc.Filename, doc.Data); err != nil {
			s.logger.Warn("archive document failed",
				slog.String("file", doc.Filename),
				slog.String("error", err.Error()),
			)
		} else if s.events != nil {
			s.events.PublishDocumentArchived(doc.Filename)
		}
	}
	return &doc
}

func (s *Service) publish(kind, id string) {
	if s.events != nil {
		s.events.PublishRecordEvent(kind, id)
	}
}

func detail(rec *models.Record) *RecordDetail {
	return &RecordDetail{
		Record:   *rec,
		Checksum: checksum.Sum([]byte(rec.Notes)),
	}
}

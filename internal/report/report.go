// Package report renders warrant records as PDF documents.
package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/starford/warrantdesk/internal/models"
)

const (
	fontFamily    = "Arial"
	pageWidth     = 200.0
	fieldWidth    = 100.0
	fieldHeight   = 8.0
	blockX        = 10.0
	blockWidth    = 190.0
	blockLineH    = 6.0
	timeLayout    = "02/01/2006 15:04"
	separatorRune = "-"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithAuthor sets the name printed in the consolidated report header.
func WithAuthor(author string) Option {
	return func(r *Renderer) { r.author = strings.TrimSpace(author) }
}

// WithJustify toggles justification of notes blocks.
func WithJustify(on bool) Option {
	return func(r *Renderer) { r.justify = on }
}

// WithClock overrides the generation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// WithLogger sets the logger used for skipped optional steps.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithCompression toggles PDF stream compression.
func WithCompression(on bool) Option {
	return func(r *Renderer) { r.compress = on }
}

// Renderer produces individual and consolidated warrant reports.
type Renderer struct {
	author   string
	justify  bool
	compress bool
	now      func() time.Time
	logger   *slog.Logger
}

// NewRenderer creates a Renderer. Defaults: justified notes, compressed
// streams, wall clock, default slog logger.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		justify:  true,
		compress: true,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// document wraps an fpdf page stream with the cp1252 translator needed for
// the core fonts.
type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (r *Renderer) newDocument(title string) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetCreationDate(r.now())
	pdf.SetTitle(title, true)
	pdf.SetCreator("warrantdesk", true)
	if r.author != "" {
		pdf.SetAuthor(r.author, true)
	}
	pdf.AddPage()
	return &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (d *document) font(style string, size float64) {
	d.pdf.SetFont(fontFamily, style, size)
}

func (d *document) cell(w, h float64, text, align string) {
	d.pdf.CellFormat(w, h, d.tr(text), "", 1, align, false, 0, "")
}

func (d *document) measure(s string) float64 {
	return d.pdf.GetStringWidth(d.tr(s))
}

// spacedLine is a wrapped line with the word spacing that justifies it.
type spacedLine struct {
	Line
	spacing float64
}

// layout wraps text to blockWidth. Justified lines are stretched to the
// cell's text area, which is blockWidth less the cell margin on each side.
func (d *document) layout(text string, justify bool) []spacedLine {
	textWidth := blockWidth - 2*d.pdf.GetCellMargin()
	lines := Wrap(text, blockWidth, d.measure)
	out := make([]spacedLine, len(lines))
	for i, line := range lines {
		out[i] = spacedLine{Line: line}
		if justify {
			out[i].spacing = wordSpacing(line, textWidth, d.measure)
		}
	}
	return out
}

// block writes text wrapped to blockWidth starting at the left margin of the
// current line, justifying non-final lines when justify is set.
func (d *document) block(text string, justify bool) {
	d.font("", 10)
	d.pdf.SetXY(blockX, d.pdf.GetY())
	for _, line := range d.layout(text, justify) {
		if line.spacing > 0 {
			d.pdf.SetWordSpacing(line.spacing)
		}
		d.cell(blockWidth, blockLineH, line.Text, "L")
		if line.spacing > 0 {
			d.pdf.SetWordSpacing(0)
		}
	}
}

func (d *document) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: output: %w", err)
	}
	return buf.Bytes(), nil
}

func recordFields(r models.Record, withIdentity bool) [][2]string {
	var out [][2]string
	if withIdentity {
		out = append(out,
			[2]string{"Processo", r.CaseID},
			[2]string{"Nome", r.Name},
		)
	}
	return append(out,
		[2]string{"Mãe", r.Mother},
		[2]string{"Nascimento", r.BirthDate},
		[2]string{"CPF", r.NationalID},
		[2]string{"Endereço", r.Address()},
		[2]string{"Regime", r.Regime},
		[2]string{"Espécie", r.Offense},
		[2]string{"Tipificação", r.Classification},
	)
}

func (d *document) fields(r models.Record, withIdentity bool) {
	d.font("", 10)
	for _, f := range recordFields(r, withIdentity) {
		d.cell(fieldWidth, fieldHeight, f[0]+": "+f[1], "L")
	}
}

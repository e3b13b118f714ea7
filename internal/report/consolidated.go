package report

import (
	"fmt"
	"strings"

	"github.com/starford/warrantdesk/internal/models"
)

// Consolidated renders every record into one numbered report.
func (r *Renderer) Consolidated(recs []models.Record) ([]byte, error) {
	d := r.newDocument("Relatório completo de mandados")

	d.font("", 12)
	d.cell(pageWidth, 10, "RELATÓRIO COMPLETO DE MANDADOS DE PRISÃO", "C")
	generated := "Gerado em: " + r.now().Format(timeLayout)
	if r.author != "" {
		generated = "Gerado por " + r.author + ", em: " + r.now().Format(timeLayout)
	}
	d.cell(pageWidth, 10, generated, "C")
	d.pdf.Ln(10)

	for i, rec := range recs {
		d.font("B", 12)
		d.cell(pageWidth, 10, fmt.Sprintf("Processo %d: %s - %s", i+1, rec.CaseID, rec.Name), "L")
		d.fields(rec, false)

		d.font("B", 10)
		d.pdf.SetTextColor(255, 0, 0)
		d.cell(pageWidth, 8, "Observações:", "L")
		d.block(rec.Notes, r.justify)
		d.pdf.SetTextColor(0, 0, 0)

		d.pdf.Ln(5)
		d.cell(pageWidth, 1, strings.Repeat(separatorRune, 80), "L")
		d.pdf.Ln(5)
	}

	d.pdf.Ln(10)
	d.font("I", 8)
	d.cell(pageWidth, 5, fmt.Sprintf("Documento gerado automaticamente - Total de Mandados: %d", len(recs)), "C")

	return d.bytes()
}

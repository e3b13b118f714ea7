package report

import (
	"log/slog"

	"github.com/go-pdf/fpdf"

	"github.com/starford/warrantdesk/internal/models"
)

const (
	photoX     = 160.0
	photoY     = 30.0
	photoWidth = 40.0
)

// Individual renders the report of a single record. photo may be nil; a
// photo that cannot be embedded is skipped and logged.
func (r *Renderer) Individual(rec models.Record, photo *models.Photo) ([]byte, error) {
	d := r.newDocument("Relatório individual " + rec.CaseID)

	d.font("", 12)
	d.cell(pageWidth, 10, "RELATÓRIO INDIVIDUAL DE MANDADO DE PRISÃO", "C")
	d.cell(pageWidth, 10, "Gerado em: "+r.now().Format(timeLayout), "C")
	d.pdf.Ln(10)

	if photo != nil {
		if err := r.placePhoto(d, photo); err != nil {
			r.logger.Warn("report: photo skipped",
				slog.String("record_id", rec.ID),
				slog.String("error", err.Error()))
		}
	}

	d.font("B", 12)
	d.cell(pageWidth, 10, "DADOS DO PROCESSO:", "L")
	d.fields(rec, true)

	d.font("B", 12)
	d.pdf.SetTextColor(255, 0, 0)
	d.cell(pageWidth, 10, "OBSERVAÇÕES:", "L")
	d.block(rec.Notes, r.justify)
	d.pdf.SetTextColor(0, 0, 0)

	d.pdf.Ln(10)
	d.font("I", 8)
	d.cell(pageWidth, 5, "Documento gerado automaticamente pelo Analista de Mandados de Prisão", "C")

	return d.bytes()
}

func (r *Renderer) placePhoto(d *document, photo *models.Photo) error {
	img, err := prepareImage(photo.Data)
	if err != nil {
		return err
	}
	opts := fpdf.ImageOptions{ImageType: img.kind}
	name := "photo-" + photo.RecordID
	d.pdf.RegisterImageOptionsReader(name, opts, img.reader())
	if d.pdf.Err() {
		// fpdf errors are sticky; a failed registration would void the document.
		err := d.pdf.Error()
		d.pdf.ClearError()
		return err
	}
	height := float64(int(float64(img.height) * photoWidth / float64(img.width)))
	d.pdf.ImageOptions(name, photoX, photoY, photoWidth, height, false, opts, 0, "")
	return nil
}

// Package testutil provides shared test helpers for building workbooks and
// session stores.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/starford/warrantdesk/internal/session"
	"github.com/starford/warrantdesk/internal/storage"
)

// Header is the column layout of the sample warrant workbook.
var Header = []any{
	"Processo", "Nome", "Mãe", "Nascimento", "CPF",
	"Rua", "Casa", "Bairro", "Regime", "Espécie", "Tipificação", "Observações",
}

// SampleRows returns three warrant rows in non-alphabetical order.
func SampleRows() [][]any {
	return [][]any{
		{"0002-22.2021", "MARIA SOUZA", "ANA SOUZA", 32888, "98765432100",
			"Rua B", "20", "Centro", "Fechado", "Definitiva", "Art. 157", "vista no centro"},
		{"0001-11.2020", "CARLOS LIMA", "JOANA LIMA", "1985-03-02", "12345678900",
			"Rua A", "10", "Liberdade", "Semiaberto", "Preventiva", "Art. 33", ""},
		{"0003-33.2022", "BRUNO ALVES", "RITA ALVES", "", "11122233344",
			"Rua C", "5A", "Barra", "Aberto", "Temporária", "Art. 121", "endereço desatualizado"},
	}
}

// Workbook builds an .xlsx file with header and rows on the first sheet.
func Workbook(t *testing.T, header []any, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	all := append([][]any{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// SampleWorkbook builds the three-row sample workbook.
func SampleWorkbook(t *testing.T) []byte {
	t.Helper()
	return Workbook(t, Header, SampleRows()...)
}

// TestStore opens a private in-memory session store closed on cleanup.
func TestStore(t *testing.T) *session.Store {
	t.Helper()
	st, err := session.Open("")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// TestDir creates a temporary directory with a storage.Provider.
func TestDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// PNG encodes a solid w×h image.
func PNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

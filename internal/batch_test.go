package internal

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/warrantdesk/internal/testutil"
)

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mandados.xlsx")
	if err := os.WriteFile(path, testutil.SampleWorkbook(t), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRender_Consolidated(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	files, err := Render(context.Background(),
		RenderOptions{Input: writeSample(t), OutDir: out},
		WithConfig(NewDefaultConfig()), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if diff := cmp.Diff([]string{filepath.Join(out, "relatorio_completo.pdf")}, files); diff != "" {
		t.Errorf("files (-want +got):\n%s", diff)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}

func TestRender_Individual(t *testing.T) {
	out := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Export.Dir = filepath.Join(t.TempDir(), "archive")

	files, err := Render(context.Background(),
		RenderOptions{Input: writeSample(t), OutDir: out, Individual: true},
		WithConfig(cfg), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	want := []string{
		"relatorio_completo.pdf",
		"relatorio_0003-33.2022.pdf",
		"relatorio_0001-11.2020.pdf",
		"relatorio_0002-22.2021.pdf",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("files (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(cfg.Export.Dir); !os.IsNotExist(err) {
		t.Error("render should not archive into the export dir")
	}
}

func TestRender_Errors(t *testing.T) {
	_, err := Render(context.Background(), RenderOptions{Input: "x.xlsx", OutDir: t.TempDir()})
	if err != errConfigRequired {
		t.Errorf("missing config err = %v", err)
	}

	_, err = Render(context.Background(),
		RenderOptions{Input: filepath.Join(t.TempDir(), "missing.xlsx"), OutDir: t.TempDir()},
		WithConfig(NewDefaultConfig()), WithLogOutput(io.Discard))
	if err == nil {
		t.Error("expected error for missing input")
	}
}

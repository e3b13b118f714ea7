package report

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

func runes(s string) float64 { return float64(utf8.RuneCountInString(s)) }

func texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestWrap(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"empty", "", 10, []string{""}},
		{"fits", "a b c", 10, []string{"a b c"}},
		{"breaks", "aaa bbb ccc", 8, []string{"aaa bbb", "ccc"}},
		{"strictly below width", "aaa bbb", 7, []string{"aaa", "bbb"}},
		{"long word kept whole", "supercalifragilistic x", 5, []string{"supercalifragilistic", "x"}},
		{"paragraphs", "um dois\ntrês", 20, []string{"um dois", "três"}},
		{"blank paragraph", "a\n\nb", 20, []string{"a", "", "b"}},
		{"crlf", "a\r\nb", 20, []string{"a", "b"}},
		{"accents count as one", "ação ação", 10, []string{"ação ação"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := texts(Wrap(c.text, c.width, runes))
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("Wrap(%q, %v) (-want +got):\n%s", c.text, c.width, diff)
			}
		})
	}
}

func TestWrap_LastMarksParagraphEnds(t *testing.T) {
	lines := Wrap("aaa bbb ccc\nddd", 8, runes)
	want := []bool{false, true, true}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v", lines)
	}
	for i, l := range lines {
		if l.Last != want[i] {
			t.Errorf("line %d (%q) Last = %v, want %v", i, l.Text, l.Last, want[i])
		}
	}
}

func TestWrap_NeverDropsWordsOrOverflows(t *testing.T) {
	text := "O réu foi visto na feira do bairro em companhia de dois homens " +
		"não identificados; a equipe retornou no dia seguinte sem sucesso."
	const width = 23
	lines := Wrap(text, width, runes)
	var rebuilt []string
	for _, l := range lines {
		if strings.Contains(l.Text, " ") && runes(l.Text) >= width {
			t.Errorf("multi-word line %q reaches width %d", l.Text, width)
		}
		rebuilt = append(rebuilt, l.Text)
	}
	if strings.Join(rebuilt, " ") != text {
		t.Errorf("words lost: %q", strings.Join(rebuilt, " "))
	}
}

func TestWordSpacing(t *testing.T) {
	if ws := wordSpacing(Line{Text: "a b c"}, 9, runes); ws != 2 {
		t.Errorf("spacing = %v, want 2", ws)
	}
	if ws := wordSpacing(Line{Text: "a b c", Last: true}, 9, runes); ws != 0 {
		t.Errorf("last line spacing = %v, want 0", ws)
	}
	if ws := wordSpacing(Line{Text: "abc"}, 9, runes); ws != 0 {
		t.Errorf("single word spacing = %v, want 0", ws)
	}
	if ws := wordSpacing(Line{Text: "a b"}, 2, runes); ws != 0 {
		t.Errorf("overfull spacing = %v, want 0", ws)
	}
}

package checksum

import "testing"

func TestRecordID_Deterministic(t *testing.T) {
	a := RecordID("0001234-56.2020.8.05.0001", "JOÃO DA SILVA")
	b := RecordID("0001234-56.2020.8.05.0001", "JOÃO DA SILVA")
	if a != b {
		t.Fatalf("same input gave %q and %q", a, b)
	}
	if len(a) != 32 {
		t.Errorf("len = %d, want 32 hex chars", len(a))
	}
}

func TestRecordID_KnownValue(t *testing.T) {
	if got := RecordID("123", "Ana"); got != "bd8e8b12a32791b443c6836ecbc3ae49" {
		t.Errorf("RecordID(123, Ana) = %q", got)
	}
	if RecordID("", "") != "b14a7b8059d9c055954c92674ce60032" {
		t.Errorf("md5(\"_\") = %q", RecordID("", ""))
	}
}

func TestRecordID_Distinct(t *testing.T) {
	pairs := [][2]string{
		{"1", "Ana"},
		{"1", "Ana "},
		{"2", "Ana"},
		{"1_Ana", ""},
		{"", "1_Ana"},
		{"1", "ana"},
	}
	seen := make(map[string][2]string)
	for _, p := range pairs {
		id := RecordID(p[0], p[1])
		if prev, ok := seen[id]; ok {
			t.Errorf("collision between %v and %v", prev, p)
		}
		seen[id] = p
	}
}

func TestSum(t *testing.T) {
	if Sum(nil) != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("sha256 of empty input = %q", Sum(nil))
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("different input, same sum")
	}
}

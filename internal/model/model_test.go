package model

import (
	"testing"
)

func TestChunkKindString(t *testing.T) {
	tests := []struct {
		kind ChunkKind
		want string
	}{
		{Unchanged, "unchanged"},
		{Removed, "removed"},
		{Added, "added"},
		{ChunkKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ChunkKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestReportStats(t *testing.T) {
	r := &MismatchReport{Mismatches: []MismatchRecord{
		{ServerLines: []LineInfo{{Line: 1}}, ClientLines: []LineInfo{{Line: 1}, {Line: 2}}},
		{ClientLines: []LineInfo{{Line: 7}}},
	}}

	records, removed, added := r.Stats()
	if records != 2 || removed != 1 || added != 3 {
		t.Errorf("Stats() = %d, %d, %d; want 2, 1, 3", records, removed, added)
	}
	if r.Clean() {
		t.Error("expected report with mismatches to be unclean")
	}

	var empty *MismatchReport
	if !empty.Clean() {
		t.Error("expected nil report to be clean")
	}
}

func TestChangedOrder(t *testing.T) {
	r := MismatchRecord{
		ServerLines: []LineInfo{{Line: 3, Snippet: "a"}},
		ClientLines: []LineInfo{{Line: 3, Snippet: "b"}},
	}
	got := r.Changed()
	if len(got) != 2 || got[0].Snippet != "a" || got[1].Snippet != "b" {
		t.Errorf("Changed() = %+v", got)
	}
}

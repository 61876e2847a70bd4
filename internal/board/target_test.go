package board

import (
	"testing"

	"github.com/alfredjeanlab/sprintboard/internal/model"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		id   string
		want Target
		ok   bool
	}{
		{"status-column-4", Column(4), true},
		{"status-column-0", Column(0), true},
		{"status-column-", Target{}, false},
		{"status-column-x", Target{}, false},
		{"sprint-container-s1", SprintContainer("s1"), true},
		{"sprint-container-null", Target{Kind: TargetContainer, Container: model.BacklogID}, true},
		{"sprint-container-", Target{Kind: TargetContainer, Container: model.BacklogID}, true},
		{"ISSUE-12", IssueRow("ISSUE-12"), true},
		{"", Target{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := ParseTarget(tt.id)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseTarget(%q) = %+v, %v; want %+v, %v", tt.id, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestTarget_IDRoundTrip(t *testing.T) {
	for _, tgt := range []Target{Column(7), SprintContainer("s2"), SprintContainer(""), IssueRow("A")} {
		got, ok := ParseTarget(tgt.ID())
		if !ok || got != tgt {
			t.Errorf("ParseTarget(%q) = %+v, want %+v", tgt.ID(), got, tgt)
		}
	}
	if got := Column(3).String(); got != "column:status-column-3" {
		t.Errorf("String() = %q", got)
	}
}

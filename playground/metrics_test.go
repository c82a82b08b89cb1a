package playground

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestComputeMetrics(t *testing.T) {
	tests := []struct {
		name    string
		settled string
		result  Result
		want    Metrics
	}{
		{
			name:    "empty input has no savings",
			settled: "",
			result:  Success(""),
			want:    Metrics{},
		},
		{
			name:    "comment stripped",
			settled: withComment,
			result:  Success(stripped),
			want:    Metrics{InputBytes: 111, OutputBytes: 101, Savings: float(9.0)},
		},
		{
			name:    "failure counts zero output",
			settled: "<broken",
			result:  Failure(FailureMessage),
			want:    Metrics{InputBytes: 7, OutputBytes: 0, Savings: float(100)},
		},
		{
			name:    "growth is negative savings",
			settled: "<a/>",
			result:  Success("<a></a>"),
			want:    Metrics{InputBytes: 4, OutputBytes: 7, Savings: float(-75)},
		},
		{
			name:    "multibyte counted in bytes",
			settled: "<t>é</t>",
			result:  Success("<t>e</t>"),
			want:    Metrics{InputBytes: 9, OutputBytes: 8, Savings: float(11.1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeMetrics(tt.settled, tt.result)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSavingsPercent(t *testing.T) {
	tests := []struct {
		in, out int
		want    float64
	}{
		{72, 58, 19.4},
		{111, 101, 9.0},
		{100, 0, 100},
		{3, 2, 33.3},
		{3, 1, 66.7},
	}
	for _, tt := range tests {
		if got := SavingsPercent(tt.in, tt.out); got != tt.want {
			t.Errorf("SavingsPercent(%d, %d) = %v, want %v", tt.in, tt.out, got, tt.want)
		}
	}
}

func TestBadges(t *testing.T) {
	m := Metrics{InputBytes: 72, OutputBytes: 58, Savings: float(19.4)}
	if got := m.InputBadge(); got != "72 bytes" {
		t.Errorf("InputBadge() = %q", got)
	}
	if got := m.OutputBadge(); got != "58 bytes (-19.4%)" {
		t.Errorf("OutputBadge() = %q", got)
	}
	if got := (Metrics{}).OutputBadge(); got != "0 bytes (-0%)" {
		t.Errorf("empty OutputBadge() = %q", got)
	}
}

func TestPresent(t *testing.T) {
	tests := []struct {
		result   Result
		mode     ViewMode
		wantPane Pane
		wantText string
	}{
		{Success("<svg/>"), Preview, PanePreview, "<svg/>"},
		{Success("<svg/>"), Code, PaneCode, "<svg/>"},
		{Failure(FailureMessage), Preview, PaneError, FailureMessage},
		{Failure(FailureMessage), Code, PaneError, FailureMessage},
	}
	for _, tt := range tests {
		pane, text := Present(tt.result, tt.mode)
		if pane != tt.wantPane || text != tt.wantText {
			t.Errorf("Present(%+v, %v) = %v, %q", tt.result, tt.mode, pane, text)
		}
	}
}

func TestParseViewMode(t *testing.T) {
	for s, want := range map[string]ViewMode{"preview": Preview, "code": Code} {
		got, ok := ParseViewMode(s)
		if !ok || got != want {
			t.Errorf("ParseViewMode(%q) = %v, %v", s, got, ok)
		}
		if got.String() != s {
			t.Errorf("%v.String() = %q", got, got.String())
		}
	}
	if _, ok := ParseViewMode("raw"); ok {
		t.Error("unknown mode should not parse")
	}
}

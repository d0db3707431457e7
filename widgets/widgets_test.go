package widgets

import (
	"strings"
	"testing"

	"midiwarp/theme"
)

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{
		{Title: "Engine", Keys: []KeyBinding{{"ctrl+s", "solve"}, {"ctrl+g", "generate"}}},
		{Keys: []KeyBinding{{"esc", "quit"}}},
	})
	want := "Engine\n  ctrl+s       solve\n  ctrl+g       generate\n  esc          quit"
	if out != want {
		t.Errorf("RenderKeyHelp() =\n%s\nwant\n%s", out, want)
	}
}

func TestRenderKeyBar(t *testing.T) {
	got := RenderKeyBar([]KeyBinding{{"tab", "next"}, {"esc", "quit"}})
	if got != "tab next · esc quit" {
		t.Errorf("RenderKeyBar() = %q", got)
	}
}

func TestCurveLevels(t *testing.T) {
	tests := []struct {
		name      string
		durations []float64
		width     int
		want      []int
	}{
		{"empty", nil, 10, nil},
		{"zero width", []float64{1, 2}, 0, nil},
		{"flat", []float64{480, 480, 480}, 10, []int{3, 3, 3}},
		{"rising", []float64{1, 2, 3, 4, 5, 6, 7, 8}, 8, []int{0, 1, 2, 3, 4, 5, 6, 7}},
		{"falling", []float64{8, 1}, 8, []int{7, 0}},
		{"averaged", []float64{1, 1, 8, 8}, 2, []int{0, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CurveLevels(tt.durations, tt.width, 8)
			if len(got) != len(tt.want) {
				t.Fatalf("CurveLevels() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("CurveLevels()[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCurveLevelsWidth(t *testing.T) {
	durations := make([]float64, 1000)
	for i := range durations {
		durations[i] = float64(i)
	}
	if got := CurveLevels(durations, 40, 8); len(got) != 40 {
		t.Errorf("got %d columns, want 40", len(got))
	}
}

func TestRenderCurve(t *testing.T) {
	th := theme.New(nil)
	out := RenderCurve(th, []float64{1, 2, 3}, 10)
	for _, r := range []string{"▁", "█"} {
		if !strings.Contains(out, r) {
			t.Errorf("RenderCurve() = %q, missing %q", out, r)
		}
	}
	if RenderCurve(th, nil, 10) != "" {
		t.Error("empty curve should render nothing")
	}
}

func TestRenderDrift(t *testing.T) {
	th := theme.New(nil)
	if got := RenderDrift(th, 0, false); !strings.Contains(got, "DRIFT: --") {
		t.Errorf("unsolved = %q", got)
	}
	if got := RenderDrift(th, 3.14159, true); !strings.Contains(got, "DRIFT: 3.14ms") {
		t.Errorf("solved = %q", got)
	}
}

func TestRenderToggle(t *testing.T) {
	th := theme.New(nil)
	if got := RenderToggle(th, "integer loops", true); !strings.Contains(got, "■ integer loops") {
		t.Errorf("on = %q", got)
	}
	if got := RenderToggle(th, "dump", false); !strings.Contains(got, "□ dump") {
		t.Errorf("off = %q", got)
	}
}

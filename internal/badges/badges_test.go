package badges

import "testing"

func ids(bs []Badge) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.ID
	}
	return out
}

func TestAward(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want []string
	}{
		{"first low attempt", Input{Score: 2, Total: 10, Sequence: 1}, []string{BadgeFirstStep}},
		{"later low attempt", Input{Score: 2, Total: 10, Sequence: 3, HistoryLength: 2}, []string{BadgeKeepGoing}},
		{"perfect", Input{Score: 10, Total: 10, Sequence: 1, ProgressPercent: 100}, []string{BadgePerfect, BadgeNearGoal}},
		{"ninety percent", Input{Score: 9, Total: 10, Sequence: 2, ProgressPercent: 55}, []string{BadgeHighScore, BadgeHalfway}},
		{"veteran", Input{Score: 5, Total: 10, Sequence: 12, HistoryLength: 10, ProgressPercent: 40}, []string{BadgeTenTests, BadgeHistory}},
		{"five tests", Input{Score: 5, Total: 10, Sequence: 5, HistoryLength: 4}, []string{BadgeFiveTests}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Award(tt.in))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestAwardAlwaysNonEmpty(t *testing.T) {
	for total := 1; total <= 5; total++ {
		for score := 0; score <= total; score++ {
			for seq := 0; seq <= 12; seq++ {
				if len(Award(Input{Score: score, Total: total, Sequence: seq})) == 0 {
					t.Fatalf("no badge for %d/%d seq %d", score, total, seq)
				}
			}
		}
	}
}

func TestRarityDisplayName(t *testing.T) {
	if RarityLegendary.DisplayName() != "Legendary" {
		t.Error("legendary display name")
	}
	if Rarity("x").DisplayName() != "x" {
		t.Error("unknown rarity should echo")
	}
}

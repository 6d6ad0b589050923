// Package badges awards achievement badges for a quiz attempt.
package badges

// Rarity is the difficulty tier of a badge.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// DisplayName returns a human-readable label for the rarity.
func (r Rarity) DisplayName() string {
	switch r {
	case RarityCommon:
		return "Common"
	case RarityRare:
		return "Rare"
	case RarityEpic:
		return "Epic"
	case RarityLegendary:
		return "Legendary"
	default:
		return string(r)
	}
}

// Badge IDs.
const (
	BadgePerfect       = "perfect-score"
	BadgeHighScore     = "high-scorer"
	BadgeTenTests      = "ten-tests"
	BadgeFiveTests     = "five-tests"
	BadgeHistory       = "steady-history"
	BadgeNearGoal      = "near-goal"
	BadgeHalfway       = "halfway"
	BadgeFirstStep     = "first-step"
	BadgeKeepGoing     = "keep-going"
	historyBadgeLength = 5
)

// Badge is one awarded achievement.
type Badge struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rarity Rarity `json:"rarity"`
}

// Input holds the facts badge rules look at.
type Input struct {
	Score    int
	Total    int
	Sequence int

	// HistoryLength is the number of prior attempts on record.
	HistoryLength int

	ProgressPercent float64
}

// Award evaluates the fixed threshold rules. It always returns at least
// one badge.
func Award(in Input) []Badge {
	ratio := 0.0
	if in.Total > 0 {
		ratio = float64(in.Score) / float64(in.Total)
	}

	var out []Badge
	switch {
	case in.Total > 0 && in.Score == in.Total:
		out = append(out, Badge{BadgePerfect, "Perfect Score", RarityLegendary})
	case ratio >= 0.9:
		out = append(out, Badge{BadgeHighScore, "High Scorer", RarityEpic})
	}

	switch {
	case in.Sequence >= 10:
		out = append(out, Badge{BadgeTenTests, "Ten Tests Taken", RarityEpic})
	case in.Sequence >= 5:
		out = append(out, Badge{BadgeFiveTests, "Five Tests Taken", RarityRare})
	}

	if in.HistoryLength >= historyBadgeLength {
		out = append(out, Badge{BadgeHistory, "Steady Learner", RarityRare})
	}

	switch {
	case in.ProgressPercent >= 80:
		out = append(out, Badge{BadgeNearGoal, "Near the Goal", RarityEpic})
	case in.ProgressPercent >= 50:
		out = append(out, Badge{BadgeHalfway, "Halfway There", RarityRare})
	}

	if len(out) == 0 {
		if in.Sequence <= 1 {
			out = append(out, Badge{BadgeFirstStep, "First Step", RarityCommon})
		} else {
			out = append(out, Badge{BadgeKeepGoing, "Keep Going", RarityCommon})
		}
	}
	return out
}

package plan

import (
	"math/rand/v2"

	"github.com/abhisek/studyreport/internal/pattern"
)

// Reflection pool states.
const (
	StateRecovery = "recovery"
	StateMomentum = "momentum"
	StateSteady   = "steady"
)

var prompts = map[string][]string{
	StateRecovery: {
		"Which part of the material felt unclear before you started the test?",
		"What would you change about how you prepared for this test?",
		"Which mistake surprised you most, and why?",
	},
	StateMomentum: {
		"What did you do differently that made this test go better?",
		"Which topic now feels easy that did not a week ago?",
		"How can you keep this week's study routine going?",
	},
	StateSteady: {
		"Which topic would you explain first to a friend, and which last?",
		"Where did you spend the most time during the test?",
		"What is one question you still have about this material?",
	},
}

var habitTips = map[string][]string{
	StateRecovery: {
		"Start each session with five minutes of reviewing yesterday's mistakes.",
		"Study in short 25-minute blocks with a break in between.",
	},
	StateMomentum: {
		"Keep the same study time each day to lock in the habit.",
		"End each session by writing tomorrow's first task.",
	},
	StateSteady: {
		"Mix one new topic with one review topic in every session.",
		"Test yourself before re-reading notes.",
	},
}

// ReflectionState picks the prompt pool from the pattern and progress.
func ReflectionState(a pattern.Analysis, ratio, progressDelta float64) string {
	switch {
	case a.Trend == pattern.TrendDeclining || ratio < lowRatio:
		return StateRecovery
	case a.Trend == pattern.TrendImproving || progressDelta > 0:
		return StateMomentum
	default:
		return StateSteady
	}
}

func reflect(a pattern.Analysis, ratio, progressDelta float64, rng *rand.Rand) Reflection {
	state := ReflectionState(a, ratio, progressDelta)
	return Reflection{
		Prompt:   pick(prompts[state], rng),
		HabitTip: pick(habitTips[state], rng),
	}
}

func pick(pool []string, rng *rand.Rand) string {
	if rng == nil {
		return pool[0]
	}
	return pool[rng.IntN(len(pool))]
}

package workflow

import (
	"fmt"
	"strings"
)

// Strategy is a server-side challenge-selection policy for train-next.
type Strategy string

// StrategyInfo pairs a strategy with its description.
type StrategyInfo struct {
	Name        Strategy
	Description string
}

// DefaultStrategy is used when next is run without a strategy.
const DefaultStrategy Strategy = "default"

// Strategies lists every strategy the service accepts, in display order.
var Strategies = []StrategyInfo{
	{"default", "Also referred to as the \"Rank Up\" workout. Will select a challenge that is above your current level."},
	{"random", "Randomly selected code challenges."},
	{"reference_workout", "Will select code challenges that are tagged as reference."},
	{"beta_workout", "Will select beta code challenges."},
	{"retrain_workout", "Will focus on code challenges that you have already completed."},
	{"algorithm_retest", "Will focus on algorithm code challenges that you have already completed."},
	{"kyu_8_workout", "Will focus on 8 kyu code challenges."},
	{"kyu_7_workout", "Will focus on 7 kyu code challenges."},
	{"kyu_6_workout", "Will focus on 6 kyu code challenges."},
	{"kyu_5_workout", "Will focus on 5 kyu code challenges."},
	{"kyu_4_workout", "Will focus on 4 kyu code challenges."},
	{"kyu_3_workout", "Will focus on 3 kyu code challenges."},
	{"kyu_2_workout", "Will focus on 2 kyu code challenges."},
	{"kyu_1_workout", "Will focus on 1 kyu code challenges."},
}

// UnknownStrategyError is returned by ParseStrategy for names outside
// Strategies.
type UnknownStrategyError struct {
	Name string
}

func (e *UnknownStrategyError) Error() string {
	names := make([]string, len(Strategies))
	for i, s := range Strategies {
		names[i] = string(s.Name)
	}
	return fmt.Sprintf("invalid strategy %q (available: %s)", e.Name, strings.Join(names, ", "))
}

// ParseStrategy validates a strategy name. An empty name selects
// DefaultStrategy.
func ParseStrategy(name string) (Strategy, error) {
	if name == "" {
		return DefaultStrategy, nil
	}
	for _, s := range Strategies {
		if string(s.Name) == name {
			return s.Name, nil
		}
	}
	return "", &UnknownStrategyError{Name: name}
}

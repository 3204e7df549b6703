package transfer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/yudhapane/fpl-oracle/internal/domain/player"
)

var (
	ErrInvalidSquadSize       = errors.New("invalid squad size")
	ErrDuplicatePlayerInSquad = errors.New("duplicate player in squad")
	ErrUnknownPlayerPosition  = errors.New("unknown player position")
	ErrUnknownStrategy        = errors.New("unknown ranking strategy")
)

// Strategy is the ranking criterion applied to transfer candidates.
type Strategy string

const (
	StrategyMaxPoints    Strategy = "maxPoints"
	StrategyValue        Strategy = "value"
	StrategySafety       Strategy = "safety"
	StrategyDifferential Strategy = "differential"
)

func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(raw) {
	case StrategyMaxPoints, StrategyValue, StrategySafety, StrategyDifferential:
		return Strategy(raw), nil
	case "":
		return StrategyMaxPoints, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownStrategy, raw)
	}
}

// Rules stores transfer generation parameters and the thresholds a
// justification reason has to clear.
type Rules struct {
	SquadSize         int
	MaxPlayersPerClub int
	CandidatePoolSize int
	// MinReasons transfers with non-positive net gain still surface when at
	// least this many distinct reasons apply.
	MinReasons int

	FDRImprovementMin     float64
	MinutesSecurityMinPP  float64
	MomentumMinPP         float64
	ValueGainMin          float64
	ConfidenceMinPP       int
}

func DefaultRules() Rules {
	return Rules{
		SquadSize:         15,
		MaxPlayersPerClub: 3,
		CandidatePoolSize: 40,
		MinReasons:        3,

		FDRImprovementMin:    0.3,
		MinutesSecurityMinPP: 0.10,
		MomentumMinPP:        0.15,
		ValueGainMin:         0.3,
		ConfidenceMinPP:      15,
	}
}

// SquadPlayer is one member of the user's current squad.
type SquadPlayer struct {
	PlayerID  int64
	TeamID    int64
	Position  player.Position
	Cost      int
	SellPrice int
}

func ValidateSquad(squad []SquadPlayer, rules Rules) error {
	if len(squad) != rules.SquadSize {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidSquadSize, rules.SquadSize, len(squad))
	}

	seen := make(map[int64]struct{}, len(squad))
	for _, sp := range squad {
		if sp.PlayerID <= 0 {
			return fmt.Errorf("squad player id must be greater than zero")
		}
		if _, exists := seen[sp.PlayerID]; exists {
			return fmt.Errorf("%w: player=%d", ErrDuplicatePlayerInSquad, sp.PlayerID)
		}
		seen[sp.PlayerID] = struct{}{}

		if _, ok := player.AllPositions[sp.Position]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPlayerPosition, sp.Position)
		}
	}

	return nil
}

// Affordable reports whether the incoming player fits bank plus sale funds.
func Affordable(bank, sellPrice, buyCost int) bool {
	return bank+sellPrice >= buyCost
}

// BreaksClubCap reports whether swapping out for a player of inTeamID pushes
// that club past the cap. Swaps inside the same club are exempt.
func BreaksClubCap(squad []SquadPlayer, outID int64, inTeamID int64, rules Rules) bool {
	var outTeamID int64
	for _, sp := range squad {
		if sp.PlayerID == outID {
			outTeamID = sp.TeamID
			break
		}
	}
	if outTeamID == inTeamID {
		return false
	}

	count := 1 // the incoming player
	for _, sp := range squad {
		if sp.PlayerID == outID {
			continue
		}
		if sp.TeamID == inTeamID {
			count++
		}
	}

	return count > rules.MaxPlayersPerClub
}

// Candidate is one ranked squad swap.
type Candidate struct {
	OutID     int64
	OutName   string
	InID      int64
	InName    string
	Position  player.Position
	NetGain   float64
	CostDelta int
	BankAfter int
	Reasons   []string
	// SquadExpectedAfter is the squad's horizon total with the swap applied.
	SquadExpectedAfter float64

	InExpectedPoints  float64
	OutExpectedPoints float64
	InOwnershipPct    float64
	InValueScore      float64
	InConfidence      int
}

// ReasonInput compares the outgoing and incoming player on the axes that can
// justify a swap.
type ReasonInput struct {
	NetGain        float64
	OutAvgFDR      float64
	InAvgFDR       float64
	OutMinutesProb float64
	InMinutesProb  float64
	OutMomentum    float64
	InMomentum     float64
	OutValueScore  float64
	InValueScore   float64
	OutTrendRising bool
	InTrendRising  bool
	OutConfidence  int
	InConfidence   int
}

// Reasons builds the ordered justification list for a swap.
func Reasons(in ReasonInput, rules Rules) []string {
	var reasons []string

	if in.NetGain > 0 {
		reasons = append(reasons, "higher projected points")
	}
	if in.OutAvgFDR-in.InAvgFDR >= rules.FDRImprovementMin {
		reasons = append(reasons, "easier fixture run")
	}
	if in.InMinutesProb-in.OutMinutesProb >= rules.MinutesSecurityMinPP {
		reasons = append(reasons, "more secure minutes")
	}
	if in.InMomentum-in.OutMomentum >= rules.MomentumMinPP {
		reasons = append(reasons, "stronger team momentum")
	}
	if in.InValueScore-in.OutValueScore >= rules.ValueGainMin {
		reasons = append(reasons, "better value per million")
	}
	if in.InTrendRising && !in.OutTrendRising {
		reasons = append(reasons, "form on the rise")
	}
	if in.InConfidence-in.OutConfidence >= rules.ConfidenceMinPP {
		reasons = append(reasons, "higher confidence")
	}

	return reasons
}

// Keep reports whether a candidate clears the emission bar: positive net gain
// or enough distinct justification reasons.
func Keep(c Candidate, rules Rules) bool {
	return c.NetGain > 0 || len(c.Reasons) >= rules.MinReasons
}

// SortCandidates orders candidates per strategy. Every strategy falls back to
// the default net-gain ordering on ties so results stay deterministic.
func SortCandidates(strategy Strategy, candidates []Candidate) {
	less := func(a, b Candidate) bool {
		return defaultLess(a, b)
	}

	switch strategy {
	case StrategyValue:
		less = func(a, b Candidate) bool {
			if a.InValueScore != b.InValueScore {
				return a.InValueScore > b.InValueScore
			}
			return defaultLess(a, b)
		}
	case StrategySafety:
		less = func(a, b Candidate) bool {
			if a.InConfidence != b.InConfidence {
				return a.InConfidence > b.InConfidence
			}
			return defaultLess(a, b)
		}
	case StrategyDifferential:
		less = func(a, b Candidate) bool {
			if a.InOwnershipPct != b.InOwnershipPct {
				return a.InOwnershipPct < b.InOwnershipPct
			}
			return defaultLess(a, b)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return less(candidates[i], candidates[j])
	})
}

func defaultLess(a, b Candidate) bool {
	if a.NetGain != b.NetGain {
		return a.NetGain > b.NetGain
	}
	if a.InExpectedPoints != b.InExpectedPoints {
		return a.InExpectedPoints > b.InExpectedPoints
	}
	return a.InID < b.InID
}

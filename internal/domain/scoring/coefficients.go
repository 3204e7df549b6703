package scoring

import "github.com/yudhapane/fpl-oracle/internal/domain/player"

// Coefficients collects every heuristic constant in the scoring model so the
// model can be tuned or swapped without touching control flow.
type Coefficients struct {
	CleanSheetFloor   float64
	CleanSheetCeiling float64
	// CleanSheetDefault is the sentinel returned when either side has no
	// aggregate data.
	CleanSheetDefault float64
	GoalCeiling       float64
	PenaltyTakerBonus float64

	AppearancePoints  float64
	FullMatchMinutes  float64
	DefaultAvgMinutes float64
	DefaultMomentum   float64
	NeutralDifficulty int

	// DifficultyDeltas is indexed by FDR-1; positive means an easier fixture
	// boosts expected points.
	DifficultyDeltas [5]float64
	// Difficulty dampening by position; unlisted positions use 1.0.
	DampForward    float64
	DampMidfielder float64

	FormRisingMult    float64
	FormFallingMult   float64
	MomentumMultFloor float64
	MomentumMultSpan  float64

	TrendMinMatches int
	TrendSample     int
	TrendThreshold  float64
	MinutesWindow   int

	ConfMinutesWeight      float64
	ConfSampleWeight       float64
	ConfSampleTarget       int
	ConfAvailabilityWeight float64
	ConfStablePoints       float64
	ConfRisingPoints       float64
	ConfFallingPoints      float64
	RotationRiskMinutes    float64
}

func DefaultCoefficients() Coefficients {
	return Coefficients{
		CleanSheetFloor:   5,
		CleanSheetCeiling: 60,
		CleanSheetDefault: 25,
		GoalCeiling:       80,
		PenaltyTakerBonus: 8,

		AppearancePoints:  2,
		FullMatchMinutes:  90,
		DefaultAvgMinutes: 45,
		DefaultMomentum:   0.5,
		NeutralDifficulty: 3,

		DifficultyDeltas: [5]float64{0.30, 0.12, 0, -0.10, -0.20},
		DampForward:      0.7,
		DampMidfielder:   0.8,

		FormRisingMult:    1.08,
		FormFallingMult:   0.92,
		MomentumMultFloor: 0.92,
		MomentumMultSpan:  0.16,

		TrendMinMatches: 4,
		TrendSample:     3,
		TrendThreshold:  1.5,
		MinutesWindow:   5,

		ConfMinutesWeight:      35,
		ConfSampleWeight:       25,
		ConfSampleTarget:       15,
		ConfAvailabilityWeight: 20,
		ConfStablePoints:       20,
		ConfRisingPoints:       18,
		ConfFallingPoints:      8,
		RotationRiskMinutes:    60,
	}
}

// PointsTable holds the per-position point values of the scoring rules.
type PointsTable struct {
	CleanSheet float64
	Goal       float64
	Assist     float64
}

func (c Coefficients) PointsFor(pos player.Position) PointsTable {
	switch pos {
	case player.PositionGoalkeeper:
		return PointsTable{CleanSheet: 4, Goal: 6, Assist: 3}
	case player.PositionDefender:
		return PointsTable{CleanSheet: 4, Goal: 6, Assist: 3}
	case player.PositionMidfielder:
		return PointsTable{CleanSheet: 1, Goal: 5, Assist: 3}
	default:
		return PointsTable{CleanSheet: 0, Goal: 4, Assist: 3}
	}
}

// DifficultyMultiplier maps an FDR and position onto the fixture multiplier.
// Out-of-range difficulties read as neutral.
func (c Coefficients) DifficultyMultiplier(difficulty int, pos player.Position) float64 {
	if difficulty < 1 || difficulty > 5 {
		difficulty = c.NeutralDifficulty
	}

	damp := 1.0
	switch pos {
	case player.PositionForward:
		damp = c.DampForward
	case player.PositionMidfielder:
		damp = c.DampMidfielder
	}

	return 1 + c.DifficultyDeltas[difficulty-1]*damp
}

// MomentumMultiplier linearly maps momentum in [0,1] onto the multiplier
// band around 1.0.
func (c Coefficients) MomentumMultiplier(momentum float64) float64 {
	if momentum < 0 {
		momentum = 0
	}
	if momentum > 1 {
		momentum = 1
	}
	return c.MomentumMultFloor + momentum*c.MomentumMultSpan
}

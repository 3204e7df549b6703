package scoring

import (
	"github.com/yudhapane/fpl-oracle/internal/domain/form"
	"github.com/yudhapane/fpl-oracle/internal/domain/team"
)

// CleanSheetChance estimates the percentage chance that the keeping side
// finishes with a clean sheet. Missing aggregates on either side short-circuit
// to the sentinel default instead of erroring.
func CleanSheetChance(c Coefficients, own form.TeamForm, ownStrength team.StrengthRatings, opp form.TeamForm, oppStrength team.StrengthRatings, home bool) float64 {
	if !own.HasData() || !opp.HasData() {
		return c.CleanSheetDefault
	}

	base := venueRates(own, home).CleanSheetRate * 100

	// The opponent travels to the mirrored venue: a home clean sheet is
	// threatened by the opponent's away scoring rate.
	oppScoring := venueRates(opp, !home).GoalsForPerGame
	switch {
	case oppScoring > 2:
		base *= 0.6
	case oppScoring > 1.5:
		base *= 0.75
	case oppScoring > 1:
		base *= 0.9
	case oppScoring < 0.8:
		base *= 1.2
	}

	ownDefence := ownStrength.DefenceHome
	oppAttack := oppStrength.AttackAway
	if !home {
		ownDefence = ownStrength.DefenceAway
		oppAttack = oppStrength.AttackHome
	}
	base += float64(ownDefence-oppAttack) / 20

	return clampFloat(base, c.CleanSheetFloor, c.CleanSheetCeiling)
}

// GoalChance estimates the percentage chance of the player scoring, from the
// player's xG rate scaled by how leaky the opponent is at the mirrored venue.
func GoalChance(c Coefficients, xgPer90 float64, penaltiesOrder int, opp form.TeamForm, home bool) float64 {
	chance := xgPer90 * 100

	if opp.HasData() {
		conceding := venueRates(opp, !home).GoalsAgainstPerGame
		switch {
		case conceding > 2:
			chance *= 1.4
		case conceding > 1.5:
			chance *= 1.2
		case conceding < 0.8:
			chance *= 0.7
		case conceding < 1:
			chance *= 0.85
		}
	}

	if penaltiesOrder > 0 && penaltiesOrder <= 1 {
		chance += c.PenaltyTakerBonus
	}

	return clampFloat(chance, 0, c.GoalCeiling)
}

// AssistChance estimates the percentage chance of an assist. Unlike the other
// models it carries no explicit clamp; inputs keep it in a sane range.
func AssistChance(xaPer90 float64, opp form.TeamForm, home bool) float64 {
	venueFactor := 0.9
	if home {
		venueFactor = 1.1
	}

	chance := xaPer90 * 100 * venueFactor
	if opp.HasData() && opp.Away.GoalsAgainstPerGame > 1.5 {
		chance *= 1.2
	}

	return chance
}

// venueRates picks the per-venue rolling rates, falling back to the overall
// window when the team has not played at that venue recently.
func venueRates(f form.TeamForm, home bool) form.VenueRates {
	rates := f.Away
	if home {
		rates = f.Home
	}
	if rates.Matches == 0 {
		return f.Overall
	}
	return rates
}

func clampFloat(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

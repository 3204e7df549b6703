package team

import "fmt"

// StrengthRatings are the provider's static strength numbers per venue.
type StrengthRatings struct {
	Overall     int
	AttackHome  int
	AttackAway  int
	DefenceHome int
	DefenceAway int
}

// Team is a club in the competition.
type Team struct {
	ID       int64
	Name     string
	Short    string
	Strength StrengthRatings
}

func (t Team) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("team id must be greater than zero")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	return nil
}

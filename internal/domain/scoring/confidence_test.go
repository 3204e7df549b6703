package scoring

import "testing"

func containsTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}

func TestScoreConfidence_Bounds(t *testing.T) {
	c := DefaultCoefficients()

	minutes := []float64{0, 30, 60, 90, 120}
	samples := []int{0, 3, 5, 15, 38}
	chances := []float64{-0.5, 0, 0.25, 0.75, 1, 1.5}
	trends := []Trend{TrendRising, TrendStable, TrendFalling}

	for _, m := range minutes {
		for _, s := range samples {
			for _, ch := range chances {
				for _, tr := range trends {
					conf := ScoreConfidence(c, m, s, ch, tr)
					if conf.Score < 0 || conf.Score > 100 {
						t.Fatalf("score %d out of range for minutes=%f sample=%d chance=%f trend=%s",
							conf.Score, m, s, ch, tr)
					}
				}
			}
		}
	}
}

func TestScoreConfidence_FullSampleBeatsNoHistory(t *testing.T) {
	c := DefaultCoefficients()

	season := ScoreConfidence(c, 90, 15, 1, TrendStable)
	fresh := ScoreConfidence(c, c.DefaultAvgMinutes, 0, 1, TrendStable)

	if season.Score <= fresh.Score {
		t.Fatalf("full-season score %d must beat no-history score %d", season.Score, fresh.Score)
	}
}

func TestScoreConfidence_TrendOrdering(t *testing.T) {
	c := DefaultCoefficients()

	rising := ScoreConfidence(c, 90, 10, 1, TrendRising)
	stable := ScoreConfidence(c, 90, 10, 1, TrendStable)
	falling := ScoreConfidence(c, 90, 10, 1, TrendFalling)

	if !(rising.Score >= stable.Score && stable.Score > falling.Score) {
		t.Fatalf("expected rising(%d) >= stable(%d) > falling(%d)", rising.Score, stable.Score, falling.Score)
	}
}

func TestScoreConfidence_FactorTags(t *testing.T) {
	c := DefaultCoefficients()

	t.Run("rotation risk", func(t *testing.T) {
		conf := ScoreConfidence(c, 30, 10, 1, TrendStable)
		if !containsTag(conf.Negatives, "rotation risk") {
			t.Fatalf("missing rotation risk tag: %v", conf.Negatives)
		}
	})

	t.Run("nailed-on minutes", func(t *testing.T) {
		conf := ScoreConfidence(c, 90, 10, 1, TrendStable)
		if !containsTag(conf.Positives, "nailed-on minutes") {
			t.Fatalf("missing nailed-on minutes tag: %v", conf.Positives)
		}
	})

	t.Run("limited match sample", func(t *testing.T) {
		conf := ScoreConfidence(c, 90, 3, 1, TrendStable)
		if !containsTag(conf.Negatives, "limited match sample") {
			t.Fatalf("missing limited match sample tag: %v", conf.Negatives)
		}
	})

	t.Run("full season sample", func(t *testing.T) {
		conf := ScoreConfidence(c, 90, 20, 1, TrendStable)
		if !containsTag(conf.Positives, "full season sample") {
			t.Fatalf("missing full season sample tag: %v", conf.Positives)
		}
	})

	t.Run("fitness doubt", func(t *testing.T) {
		conf := ScoreConfidence(c, 90, 10, 0.75, TrendStable)
		if !containsTag(conf.Negatives, "fitness doubt") {
			t.Fatalf("missing fitness doubt tag: %v", conf.Negatives)
		}
	})

	t.Run("rising form", func(t *testing.T) {
		conf := ScoreConfidence(c, 90, 10, 1, TrendRising)
		if !containsTag(conf.Positives, "rising form") {
			t.Fatalf("missing rising form tag: %v", conf.Positives)
		}
	})

	t.Run("cold streak", func(t *testing.T) {
		conf := ScoreConfidence(c, 90, 10, 1, TrendFalling)
		if !containsTag(conf.Negatives, "cold streak") {
			t.Fatalf("missing cold streak tag: %v", conf.Negatives)
		}
	})
}

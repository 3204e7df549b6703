package scoring

import "math"

// Confidence scores how much a prediction can be trusted, with the factor
// tags that contributed to or detracted from the score.
type Confidence struct {
	Score      int
	Positives  []string
	Negatives  []string
}

// ScoreConfidence sums four weighted components: minutes reliability, sample
// size, availability, and form stability, clamped to [0,100].
func ScoreConfidence(c Coefficients, avgMinutes float64, sampleSize int, playingChance float64, trend Trend) Confidence {
	if playingChance < 0 {
		playingChance = 0
	}
	if playingChance > 1 {
		playingChance = 1
	}

	minutesRatio := minFloat(avgMinutes/c.FullMatchMinutes, 1)
	if minutesRatio < 0 {
		minutesRatio = 0
	}
	sampleRatio := minFloat(float64(sampleSize)/float64(c.ConfSampleTarget), 1)

	score := minutesRatio * c.ConfMinutesWeight
	score += sampleRatio * c.ConfSampleWeight
	score += playingChance * c.ConfAvailabilityWeight
	switch trend {
	case TrendRising:
		score += c.ConfRisingPoints
	case TrendFalling:
		score += c.ConfFallingPoints
	default:
		score += c.ConfStablePoints
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	conf := Confidence{Score: int(math.Round(score))}

	if avgMinutes < c.RotationRiskMinutes {
		conf.Negatives = append(conf.Negatives, "rotation risk")
	} else if avgMinutes >= 85 {
		conf.Positives = append(conf.Positives, "nailed-on minutes")
	}

	if sampleSize < 5 {
		conf.Negatives = append(conf.Negatives, "limited match sample")
	} else if sampleSize >= c.ConfSampleTarget {
		conf.Positives = append(conf.Positives, "full season sample")
	}

	if playingChance < 1 {
		conf.Negatives = append(conf.Negatives, "fitness doubt")
	}

	switch trend {
	case TrendRising:
		conf.Positives = append(conf.Positives, "rising form")
	case TrendFalling:
		conf.Negatives = append(conf.Negatives, "cold streak")
	}

	return conf
}

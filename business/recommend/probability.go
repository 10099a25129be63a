package recommend

// BoundaryVariant selects how a score exactly equal to the cutoff is
// binned. The round-preference flow treats it as a slight edge (75); the
// explore flows leave the zero point out of every bracket so it falls to
// the floor probability. Both behaviors are load-bearing for historical
// outputs, so the variant travels with the flow config instead of being
// normalized away.
type BoundaryVariant int

const (
	ZeroInclusive BoundaryVariant = iota
	ZeroExclusive
)

const (
	msgTopScore    = "Excellent chances - You have the highest possible percentile (100%)"
	msgExcellent   = "Excellent chances - Your score is significantly above the cutoff (4+ points above)"
	msgVeryHigh    = "Very high chances - Your score is 3 to 4 points above the cutoff"
	msgHigh        = "High chances - Your score is 2 to 3 points above the cutoff"
	msgGood        = "Good chances - Your score is 1 to 2 points above the cutoff"
	msgFair        = "Fair chances - Your score is 0.5 to 1 point above the cutoff"
	msgModerate    = "Moderate chances - Your score is up to 0.5 points above the cutoff"
	msgLowModerate = "Low-moderate chances - Your score is up to 0.5 points below the cutoff"
	msgLow         = "Low chances - Your score is 0.5 to 1 point below the cutoff"
	msgVeryLow     = "Very low chances - Your score is 1 to 2 points below the cutoff"
	msgMinimal     = "Minimal chances - Your score is 2 to 3 points below the cutoff"
	msgVeryMinimal = "Very minimal chances - Your score is 3 to 4 points below the cutoff"
	msgExtremelyLow4 = "Extremely low chances - Your score is 4 to 5 points below the cutoff"
	msgExtremelyLow5 = "Extremely low chances - Your score is 5 to 10 points below the cutoff"
	msgExtremelyLow10 = "Extremely low chances - Your score is more than 10 points below the cutoff"
)

// Probability maps the gap between a student's percentile and last year's
// cutoff to an admission probability and its display message. A perfect
// percentile short-circuits the ladder.
func Probability(score, cutoff float64, variant BoundaryVariant) (int, string) {
	if score == 100 {
		return 99, msgTopScore
	}

	diff := score - cutoff

	switch {
	case diff >= 4:
		return 99, msgExcellent
	case diff >= 3:
		return 95, msgVeryHigh
	case diff >= 2:
		return 90, msgHigh
	case diff >= 1:
		return 85, msgGood
	case diff >= 0.5:
		return 80, msgFair
	case diff > 0, diff == 0 && variant == ZeroInclusive:
		return 75, msgModerate
	case diff < 0 && diff >= -0.5:
		return 70, msgLowModerate
	case diff < -0.5 && diff >= -1:
		return 65, msgLow
	case diff < -1 && diff >= -2:
		return 60, msgVeryLow
	case diff < -2 && diff >= -3:
		return 50, msgMinimal
	case diff < -3 && diff >= -4:
		return 40, msgVeryMinimal
	case diff < -4 && diff >= -5:
		return 30, msgExtremelyLow4
	case diff < -5 && diff >= -10:
		return 20, msgExtremelyLow5
	default:
		return 10, msgExtremelyLow10
	}
}

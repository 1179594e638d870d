package game

import (
	"fmt"
	"math"
)

// Noise levels of the patient's answers. The closer the two lenses, the
// more often the patient is unsure or wrong.
const (
	closeBlurDiff     = 1e-4
	veryCloseBlurDiff = 2e-5
)

func answerOdds(diff float64) (other, same float64) {
	switch {
	case diff < veryCloseBlurDiff:
		return 0.10, 0.25
	case diff < closeBlurDiff:
		return 0.05, 0.15
	default:
		return 0.01, 0.03
	}
}

// ChooseFeedback turns two blur values into the patient's answer. roll is
// a uniform draw from [0, 1) deciding whether the patient answers
// correctly, hesitates or gets it wrong.
func ChooseFeedback(lens1, lens2, blur1, blur2, roll float64) string {
	firstBetter := blur1 < blur2
	diff := math.Abs(blur1 - blur2)
	if math.IsInf(blur1, 1) && math.IsInf(blur2, 1) {
		diff = 0
	}
	other, same := answerOdds(diff)
	switch {
	case roll < other:
		wrong := lens1
		name := "first"
		if firstBetter {
			wrong, name = lens2, "second"
		}
		return fmt.Sprintf("The %s lens (%+.2fD) seems a bit less blurry. (Patient seems a little unsure)", name, wrong)
	case roll < other+same:
		return fmt.Sprintf("Hmm, both lenses (%+.2fD and %+.2fD) look quite similar to me.", lens1, lens2)
	case diff < 1e-9:
		return fmt.Sprintf("Both lenses (%+.2fD and %+.2fD) look identical.", lens1, lens2)
	case firstBetter:
		return fmt.Sprintf("The first lens (%+.2fD) looks less blurry than the second (%+.2fD).", lens1, lens2)
	default:
		return fmt.Sprintf("The second lens (%+.2fD) looks less blurry than the first (%+.2fD).", lens2, lens1)
	}
}

// FormatScore renders a score the way the result screen shows it.
func FormatScore(score float64) string {
	if math.IsInf(score, 1) {
		return "Infinity"
	}
	return fmt.Sprintf("%.2f", score)
}

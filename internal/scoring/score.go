package scoring

import (
	"math"

	"github.com/MikeSquared-Agency/Audit5S/internal/store"
)

// Points returns the earned and attainable points for one rating.
// Not-applicable and unrecognised ratings count as 0/0.
func Points(r store.Rating) (points, max float64) {
	switch r {
	case store.RatingYes:
		return 1, 1
	case store.RatingPartial:
		return 0.5, 1
	case store.RatingNo:
		return 0, 1
	default:
		return 0, 0
	}
}

// Tally accumulates points across any number of ratings.
type Tally struct {
	Points float64 `json:"points"`
	Max    float64 `json:"max_points"`
}

func (t *Tally) Add(r store.Rating) {
	p, m := Points(r)
	t.Points += p
	t.Max += m
}

// Percent is round(100 * Points / Max), half-up, or 0 when nothing applied.
func (t Tally) Percent() int {
	if t.Max == 0 {
		return 0
	}
	return roundHalfUp(t.Points / t.Max * 100)
}

// Score computes the compliance percentage of one audit's answers.
func Score(answers []store.Answer) int {
	var t Tally
	for _, a := range answers {
		t.Add(a.Rating)
	}
	return t.Percent()
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

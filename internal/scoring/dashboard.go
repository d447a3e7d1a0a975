package scoring

import (
	"sort"

	"github.com/MikeSquared-Agency/Audit5S/internal/store"
)

// Compliance bands used to colour scores.
const (
	BandGood = "good"
	BandFair = "fair"
	BandPoor = "poor"
)

// Band maps a score to good (>=90), fair (>=70) or poor.
func Band(score int) string {
	switch {
	case score >= 90:
		return BandGood
	case score >= 70:
		return BandFair
	default:
		return BandPoor
	}
}

type AreaScore struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Audits int    `json:"audits"`
	Band   string `json:"band"`
}

// Dashboard is the headline view over all audits and actions.
type Dashboard struct {
	TotalAudits   int         `json:"total_audits"`
	AverageScore  int         `json:"average_score"`
	AverageBand   string      `json:"average_band"`
	OpenActions   int         `json:"open_actions"`
	ClosedActions int         `json:"closed_actions"`
	Areas         []AreaScore `json:"areas"`
}

func Summarize(records []store.AuditRecord, actions []store.ActionItem) Dashboard {
	d := Dashboard{TotalAudits: len(records)}

	if len(records) > 0 {
		total := 0
		for _, r := range records {
			total += r.Score
		}
		d.AverageScore = roundHalfUp(float64(total) / float64(len(records)))
	}
	d.AverageBand = Band(d.AverageScore)

	for _, a := range actions {
		if a.Status == store.ActionClosed {
			d.ClosedActions++
		} else {
			d.OpenActions++
		}
	}

	areas := AreaAverages(records)
	sort.SliceStable(areas, func(i, j int) bool { return areas[i].Average > areas[j].Average })
	d.Areas = make([]AreaScore, 0, len(areas))
	for _, a := range areas {
		d.Areas = append(d.Areas, AreaScore{Name: a.Name, Score: a.Average, Audits: a.Count, Band: Band(a.Average)})
	}
	return d
}

// Consolidated is the per-question and per-area breakdown report.
type Consolidated struct {
	Questions       []QuestionStat  `json:"questions"`
	QuestionRanking QuestionRanking `json:"question_ranking"`
	Areas           []AreaStat      `json:"areas"`
	AreaRanking     AreaRanking     `json:"area_ranking"`
}

func Consolidate(records []store.AuditRecord, questions []store.Question) Consolidated {
	qs := QuestionStats(records, questions)
	areas := AreaAverages(records)
	return Consolidated{
		Questions:       qs,
		QuestionRanking: RankQuestions(qs),
		Areas:           areas,
		AreaRanking:     RankAreas(areas),
	}
}

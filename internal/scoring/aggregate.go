package scoring

import "github.com/MikeSquared-Agency/Audit5S/internal/store"

// AreaStat is the average audit score of one area.
type AreaStat struct {
	Name    string `json:"name"`
	Average int    `json:"average"`
	Count   int    `json:"count"`
}

// QuestionStat is the compliance of one question across every audit.
// Count is the number of applicable answers (the tally's max points).
type QuestionStat struct {
	ID         int    `json:"id"`
	Text       string `json:"text"`
	Percentage int    `json:"percentage"`
	Count      int    `json:"count"`
}

// AreaAverages groups records by area in first-seen order.
func AreaAverages(records []store.AuditRecord) []AreaStat {
	type acc struct{ total, count int }
	var order []string
	sums := make(map[string]*acc)
	for _, r := range records {
		a, ok := sums[r.Area]
		if !ok {
			a = &acc{}
			sums[r.Area] = a
			order = append(order, r.Area)
		}
		a.total += r.Score
		a.count++
	}

	out := make([]AreaStat, 0, len(order))
	for _, name := range order {
		a := sums[name]
		out = append(out, AreaStat{
			Name:    name,
			Average: roundHalfUp(float64(a.total) / float64(a.count)),
			Count:   a.count,
		})
	}
	return out
}

// QuestionStats tallies every known question over all records. Only the
// first answer for a question within a record is counted.
func QuestionStats(records []store.AuditRecord, questions []store.Question) []QuestionStat {
	out := make([]QuestionStat, 0, len(questions))
	for _, q := range questions {
		var t Tally
		for _, r := range records {
			for _, a := range r.Answers {
				if a.QuestionID == q.ID {
					t.Add(a.Rating)
					break
				}
			}
		}
		out = append(out, QuestionStat{
			ID:         q.ID,
			Text:       q.Text,
			Percentage: t.Percent(),
			Count:      int(t.Max),
		})
	}
	return out
}

package scoring

import "sort"

// RankLimit bounds every best/worst list.
const RankLimit = 5

type AreaRanking struct {
	Worst []AreaStat `json:"worst"`
	Best  []AreaStat `json:"best"`
}

type QuestionRanking struct {
	Lowest  []QuestionStat `json:"lowest"`
	Highest []QuestionStat `json:"highest"`
}

// RankAreas sorts areas ascending and splits the list at floor(n/2): the
// lower half feeds Worst, the upper half reversed feeds Best, so no area
// appears in both lists.
func RankAreas(stats []AreaStat) AreaRanking {
	sorted := append([]AreaStat(nil), stats...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Average < sorted[j].Average })

	mid := len(sorted) / 2
	worst := make([]AreaStat, mid)
	copy(worst, sorted[:mid])
	best := make([]AreaStat, len(sorted)-mid)
	copy(best, sorted[mid:])
	for i, j := 0, len(best)-1; i < j; i, j = i+1, j-1 {
		best[i], best[j] = best[j], best[i]
	}

	return AreaRanking{
		Worst: truncate(worst),
		Best:  truncate(best),
	}
}

// RankQuestions sorts the answered questions twice, independently. With few
// questions the two lists can share entries.
func RankQuestions(stats []QuestionStat) QuestionRanking {
	active := make([]QuestionStat, 0, len(stats))
	for _, s := range stats {
		if s.Count > 0 {
			active = append(active, s)
		}
	}

	lowest := make([]QuestionStat, len(active))
	copy(lowest, active)
	sort.SliceStable(lowest, func(i, j int) bool { return lowest[i].Percentage < lowest[j].Percentage })

	highest := make([]QuestionStat, len(active))
	copy(highest, active)
	sort.SliceStable(highest, func(i, j int) bool { return highest[i].Percentage > highest[j].Percentage })

	return QuestionRanking{
		Lowest:  truncate(lowest),
		Highest: truncate(highest),
	}
}

func truncate[T any](s []T) []T {
	if len(s) > RankLimit {
		return s[:RankLimit]
	}
	return s
}

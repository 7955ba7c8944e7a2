package entity

import "sort"

// RankedLabel: элемент топ-k с категорией класса.
type RankedLabel struct {
	Label    string   `json:"label"`
	Score    float64  `json:"score"`
	Category Category `json:"category"`
}

// Distribution: полный вектор вероятностей классификатора.
type Distribution struct {
	Labels []string
	Scores []float64
}

// NewDistribution связывает вектор вероятностей с метками классов.
func NewDistribution(labels []string, scores []float64) (Distribution, error) {
	if len(labels) == 0 {
		return Distribution{}, invalid("distribution", "class set is empty")
	}
	if len(labels) != len(scores) {
		return Distribution{}, invalid("distribution", "%d labels for %d scores", len(labels), len(scores))
	}
	for i, s := range scores {
		if !inUnit(s) {
			return Distribution{}, invalid("distribution", "score %v for %q is outside [0,1]", s, labels[i])
		}
	}
	return Distribution{Labels: labels, Scores: scores}, nil
}

// Top возвращает k самых вероятных классов.
// При равных вероятностях выше стоит класс с меньшим индексом,
// поэтому результат не зависит от порядка сортировки.
func (d Distribution) Top(k int) []ScoredLabel {
	idx := make([]int, len(d.Scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return d.Scores[idx[a]] > d.Scores[idx[b]]
	})
	if k > len(idx) {
		k = len(idx)
	}
	out := make([]ScoredLabel, 0, k)
	for _, i := range idx[:k] {
		out = append(out, ScoredLabel{Label: d.Labels[i], Score: d.Scores[i]})
	}
	return out
}


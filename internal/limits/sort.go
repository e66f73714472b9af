package limits

import (
	"sort"

	"github.com/theirongolddev/cashplan/internal/bank"
	"github.com/theirongolddev/cashplan/internal/model"
)

// SortByPreference returns a copy of cards ordered by the bank preference
// list. Listed banks come first in list order; unlisted banks follow in
// their original relative order. Ties keep input order.
func SortByPreference(cards []model.ClassifiedCard, order []string) []model.ClassifiedCard {
	rank := make(map[string]int, len(order))
	for i, label := range order {
		code := bank.Normalize(label)
		if _, seen := rank[code]; !seen {
			rank[code] = i
		}
	}
	unlisted := len(order)

	rankOf := func(c model.ClassifiedCard) int {
		if r, ok := rank[c.Bank()]; ok {
			return r
		}
		return unlisted
	}

	sorted := make([]model.ClassifiedCard, len(cards))
	copy(sorted, cards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rankOf(sorted[i]) < rankOf(sorted[j])
	})
	return sorted
}

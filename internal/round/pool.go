package round

import "github.com/verte-zerg/vocabdrill/internal/model"

type eligibility interface {
	EligiblePool(catalog []model.WordEntry) []model.WordEntry
}

// SelectPool returns the eligible catalog entries that pass filter.
// Random and All select the same entries; every round is shuffled.
func SelectPool(catalog []model.WordEntry, l eligibility, filter model.Filter) []model.WordEntry {
	eligible := l.EligiblePool(catalog)
	pool := eligible[:0]
	for _, e := range eligible {
		if filter.Match(e) {
			pool = append(pool, e)
		}
	}
	return pool
}

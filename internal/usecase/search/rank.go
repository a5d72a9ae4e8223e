package search

import (
	"math"
	"sort"

	"github.com/nexacare/caresearch/internal/domain/caregiver"
	"github.com/nexacare/caresearch/internal/domain/search/order"
	"github.com/nexacare/caresearch/internal/domain/search/result"
)

// rank enriches fetched profiles with their rating aggregate and applies a
// stable sort for the requested key. The store returns rows in arbitrary plan
// order, so the set is first normalized to candidate-position order; the key
// sort is stable on top of that, which makes vector relevance the tie-break
// for every key. Records missing from the candidate list get a past-the-end
// sentinel and drift to the tail, keeping their relative input order.
func rank(profiles []caregiver.Profile, key order.Key, positions map[string]int) []result.Ranked {
	ranked := make([]result.Ranked, len(profiles))
	for i := range profiles {
		ranked[i] = result.FromProfile(&profiles[i])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return relevanceRank(positions, &ranked[i]) < relevanceRank(positions, &ranked[j])
	})

	var less func(i, j int) bool
	switch key {
	case order.Rating:
		less = func(i, j int) bool {
			return ranked[i].AverageRating() > ranked[j].AverageRating()
		}
	case order.PriceLow:
		// Missing hourly rate sorts last.
		less = func(i, j int) bool {
			return hourlyRateOr(&ranked[i], math.Inf(1)) < hourlyRateOr(&ranked[j], math.Inf(1))
		}
	case order.PriceHigh:
		// Missing hourly rate counts as the lowest price.
		less = func(i, j int) bool {
			return hourlyRateOr(&ranked[i], 0) > hourlyRateOr(&ranked[j], 0)
		}
	case order.Experience:
		less = func(i, j int) bool {
			return ranked[i].Experience() > ranked[j].Experience()
		}
	default:
		// Vector relevance: already in candidate-position order.
		return ranked
	}

	sort.SliceStable(ranked, less)
	return ranked
}

func hourlyRateOr(r *result.Ranked, fallback float64) float64 {
	if r.Charges() == nil || r.Charges().HourlyRate() == nil {
		return fallback
	}
	return *r.Charges().HourlyRate()
}

func relevanceRank(positions map[string]int, r *result.Ranked) int {
	if pos, ok := positions[r.VectorID()]; ok {
		return pos
	}
	return len(positions)
}

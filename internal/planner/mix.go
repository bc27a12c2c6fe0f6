package planner

import (
	"math"
	"sort"

	"github.com/abhisek/qbank/internal/question"
)

// sampleMix partitions the ordered candidates by difficulty and draws from
// each partition per the mix weights. Quotas come from largest-remainder
// rounding so they always sum to count exactly; when a partition cannot
// meet its quota the shortfall is redistributed proportionally over the mix
// partitions that still have supply, and finally over candidates outside
// the mix, so the selection only runs short when the pool does.
func sampleMix(ordered []string, count int, mix map[question.Difficulty]float64, res Resolver) []string {
	partitions := make(map[question.Difficulty][]string)
	for _, id := range ordered {
		q, ok := res.Question(id)
		if !ok {
			continue
		}
		partitions[q.Difficulty] = append(partitions[q.Difficulty], id)
	}

	quotas := largestRemainder(mix, count)

	picked := make([]string, 0, count)
	pickedSet := make(map[string]bool, count)
	take := func(tier question.Difficulty, n int) int {
		taken := 0
		for _, id := range partitions[tier] {
			if taken == n {
				break
			}
			if pickedSet[id] {
				continue
			}
			pickedSet[id] = true
			picked = append(picked, id)
			taken++
		}
		return taken
	}

	shortfall := 0
	for _, tier := range tierOrder(quotas) {
		shortfall += quotas[tier] - take(tier, quotas[tier])
	}

	// Redistribute shortfall over mix partitions with remaining supply,
	// proportionally to their weights, until nothing changes.
	for shortfall > 0 {
		open := make(map[question.Difficulty]float64)
		for tier, w := range mix {
			if remainingIn(partitions[tier], pickedSet) > 0 {
				open[tier] = w
			}
		}
		if len(open) == 0 {
			break
		}
		extra := largestRemainder(open, shortfall)
		progressed := false
		for _, tier := range tierOrder(extra) {
			got := take(tier, extra[tier])
			shortfall -= got
			if got > 0 {
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	// Last resort: candidates outside the mix, in the original ordering.
	if shortfall > 0 {
		for _, id := range ordered {
			if shortfall == 0 {
				break
			}
			if pickedSet[id] {
				continue
			}
			pickedSet[id] = true
			picked = append(picked, id)
			shortfall--
		}
	}

	return picked
}

func remainingIn(partition []string, pickedSet map[string]bool) int {
	n := 0
	for _, id := range partition {
		if !pickedSet[id] {
			n++
		}
	}
	return n
}

// largestRemainder apportions count across the weighted tiers: each tier
// gets the floor of its proportional share, and the leftover units go to
// the largest fractional remainders. Ties break toward the lower tier so
// the result is deterministic.
func largestRemainder(weights map[question.Difficulty]float64, count int) map[question.Difficulty]int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	quotas := make(map[question.Difficulty]int, len(weights))
	if total <= 0 || count <= 0 {
		return quotas
	}

	type share struct {
		tier question.Difficulty
		frac float64
	}
	var shares []share
	assigned := 0
	for tier, w := range weights {
		if w <= 0 {
			continue
		}
		exact := float64(count) * w / total
		floor := int(math.Floor(exact))
		quotas[tier] = floor
		assigned += floor
		shares = append(shares, share{tier: tier, frac: exact - float64(floor)})
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].frac != shares[j].frac {
			return shares[i].frac > shares[j].frac
		}
		return shares[i].tier < shares[j].tier
	})

	for i := 0; assigned < count && len(shares) > 0; i = (i + 1) % len(shares) {
		quotas[shares[i].tier]++
		assigned++
	}
	return quotas
}

// tierOrder returns the quota keys in ascending tier order for
// deterministic iteration.
func tierOrder(quotas map[question.Difficulty]int) []question.Difficulty {
	tiers := make([]question.Difficulty, 0, len(quotas))
	for tier := range quotas {
		tiers = append(tiers, tier)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })
	return tiers
}

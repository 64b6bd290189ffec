package scheduler

import (
	"time"

	"github.com/kilianp07/skyplan/core/plan"
)

// Summarize computes the statistics of a finished plan. cands gives the
// band and ToO flag of each visited observation and the atom totals the
// completion fractions are taken against.
func Summarize(p *plan.Plan, cands []Candidate, cond plan.Conditions) plan.NightStats {
	stats := plan.NightStats{
		TimeLoss:   time.Duration(max(p.TimeLeft(), 0)) * p.SlotLength,
		Conditions: cond,
		Completion: make(map[int]float64),
	}

	byID := make(map[string]Candidate, len(cands))
	total := make(map[int]int)
	for _, c := range cands {
		if c.Observation.Site != p.Site {
			continue
		}
		byID[c.Observation.ID] = c
		total[c.Observation.Band] += len(c.Observation.Atoms)
	}

	scheduled := make(map[int]int)
	for _, v := range p.Visits() {
		stats.PlanScore += v.Score
		c, ok := byID[v.ObservationID]
		if !ok {
			continue
		}
		if c.Observation.ToO {
			stats.ToOs++
		}
		scheduled[c.Observation.Band] += v.AtomEnd - v.AtomStart + 1
	}
	for band, n := range total {
		if n > 0 {
			stats.Completion[band] = float64(scheduled[band]) / float64(n)
		}
	}
	return stats
}

package journal

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Summary aggregates a set of runs for the dashboard header.
type Summary struct {
	Runs         int
	TotalKm      float64
	MeanKm       float64
	LongestKm    float64
	LongestRunID string
}

// Summarize computes totals over runs. An empty slice yields a zero Summary.
func Summarize(runs []Run) Summary {
	if len(runs) == 0 {
		return Summary{}
	}
	distances := make(stats.Float64Data, 0, len(runs))
	for _, r := range runs {
		distances = append(distances, r.DistanceKm)
	}

	// The only error stats returns here is for empty input, handled above.
	total, _ := distances.Sum()
	mean, _ := distances.Mean()
	longest, _ := distances.Max()

	s := Summary{
		Runs:      len(runs),
		TotalKm:   round1(total),
		MeanKm:    round1(mean),
		LongestKm: longest,
	}
	for _, r := range runs {
		if r.DistanceKm == longest {
			s.LongestRunID = r.ID
			break
		}
	}
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

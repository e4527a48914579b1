package stats

import "math"

// FitnessSummary condenses a best-by-generation series.
type FitnessSummary struct {
	InitialBest float64 `json:"initial_best"`
	FinalBest   float64 `json:"final_best"`
	BestMean    float64 `json:"best_mean"`
	BestStd     float64 `json:"best_std"`
	BestMax     float64 `json:"best_max"`
	BestMin     float64 `json:"best_min"`
	Improvement float64 `json:"improvement"`
	// StallGenerations counts trailing generations without a new best.
	StallGenerations int `json:"stall_generations"`
}

func SummarizeFitness(best []float64) FitnessSummary {
	if len(best) == 0 {
		return FitnessSummary{}
	}
	s := FitnessSummary{
		InitialBest: best[0],
		FinalBest:   best[len(best)-1],
		BestMax:     best[0],
		BestMin:     best[0],
	}
	sum := 0.0
	for _, v := range best {
		sum += v
		s.BestMax = math.Max(s.BestMax, v)
		s.BestMin = math.Min(s.BestMin, v)
	}
	s.BestMean = sum / float64(len(best))
	variance := 0.0
	for _, v := range best {
		d := v - s.BestMean
		variance += d * d
	}
	s.BestStd = math.Sqrt(variance / float64(len(best)))
	s.Improvement = s.FinalBest - s.InitialBest

	for i := len(best) - 1; i > 0; i-- {
		if best[i] > best[i-1] {
			break
		}
		s.StallGenerations++
	}
	return s
}

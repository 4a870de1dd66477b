package analytics

import "interview_prep_backend/internal/model"

// ClassifyTrend splits chronologically ordered values at ceil(n/2) and
// compares the mean of the second half with the mean of the first half.
// Fewer than two values are always stable.
func (e *Engine) ClassifyTrend(values []float64) model.Trend {
	return classifyTrend(values, e.Tunables().TrendThreshold)
}

// ClassifyTrend uses DefaultTrendThreshold.
func ClassifyTrend(values []float64) model.Trend {
	return classifyTrend(values, DefaultTrendThreshold)
}

func classifyTrend(values []float64, threshold float64) model.Trend {
	if len(values) < 2 {
		return model.TrendStable
	}

	mid := (len(values) + 1) / 2
	diff := mean(values[mid:]) - mean(values[:mid])

	switch {
	case diff > threshold:
		return model.TrendImproving
	case diff < -threshold:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func intsToFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

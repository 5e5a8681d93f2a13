package matching

import "math"

type confidenceFunc func(score float64, b Breakdown) float64

func scaledConfidence(scale float64) confidenceFunc {
	return func(score float64, _ Breakdown) float64 {
		return clamp01(score * scale)
	}
}

func consensusConfidence(_ float64, b Breakdown) float64 {
	c := b.components()
	lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
	for _, v := range c {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		sum += v
	}
	mean := sum / float64(len(c))
	return clamp01(0.5*mean + 0.5*(1-(hi-lo)))
}

func newConfidence(c Config) confidenceFunc {
	if c.Confidence == ConfidenceConsensus {
		return consensusConfidence
	}
	return scaledConfidence(c.ConfidenceScale)
}

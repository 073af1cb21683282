// Package blur classifies a buffer as sharp or blurry and applies the matching
// corrective chain.
package blur

import (
	"fmt"
	"math"

	"progressive-upscaler/internal/core"
)

// Decision thresholds. Score is the mean per-channel variance.
const (
	BlurryThreshold      = 500.0
	OutOfFocusThreshold  = 300.0
	DirectionalThreshold = 50.0
)

// Stats returns the population mean and standard deviation of every colour channel.
// Alpha is not included.
func Stats(buf *core.Buffer) ([]core.ChannelStatistics, error) {
	if buf.Empty() {
		return nil, fmt.Errorf("cannot compute statistics of an empty buffer")
	}
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid buffer: %w", err)
	}

	cc := buf.ColorChannels()
	sum := make([]float64, cc)
	sumSq := make([]float64, cc)
	for i := 0; i < len(buf.Pix); i += buf.Channels {
		for c := 0; c < cc; c++ {
			v := float64(buf.Pix[i+c])
			sum[c] += v
			sumSq[c] += v * v
		}
	}

	n := float64(buf.Width * buf.Height)
	stats := make([]core.ChannelStatistics, cc)
	for c := 0; c < cc; c++ {
		mean := sum[c] / n
		variance := sumSq[c]/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		stats[c] = core.ChannelStatistics{Mean: mean, StdDev: math.Sqrt(variance)}
	}
	return stats, nil
}

// Classify applies the decision rule to precomputed statistics.
func Classify(stats []core.ChannelStatistics) core.Classification {
	if len(stats) == 0 {
		return core.NotBlurry()
	}

	score := 0.0
	for _, s := range stats {
		score += s.StdDev * s.StdDev
	}
	score /= float64(len(stats))

	if score >= BlurryThreshold {
		return core.Classification{IsBlurry: false, Kind: core.BlurNone, Score: score}
	}

	kind := core.BlurGeneral
	switch {
	case directional(stats):
		kind = core.BlurMotion
	case score < OutOfFocusThreshold:
		kind = core.BlurOutOfFocus
	}
	return core.Classification{IsBlurry: true, Kind: kind, Score: score}
}

// directional is the motion proxy: some channel whose mean and spread differ widely.
func directional(stats []core.ChannelStatistics) bool {
	for _, s := range stats {
		if math.Abs(s.Mean-s.StdDev) > DirectionalThreshold {
			return true
		}
	}
	return false
}

// Analyze computes statistics and classifies. When statistics cannot be computed it
// returns a degraded not-blurry verdict together with the error; callers log it and
// carry on.
func Analyze(buf *core.Buffer) (core.Classification, error) {
	stats, err := Stats(buf)
	if err != nil {
		c := core.NotBlurry()
		c.Degraded = true
		return c, fmt.Errorf("blur analysis degraded: %w", err)
	}
	return Classify(stats), nil
}

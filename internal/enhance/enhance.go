// Package enhance holds the fixed, unconditional filter stages around the resampler.
package enhance

import (
	"progressive-upscaler/internal/algorithms"
	"progressive-upscaler/internal/core"
)

var (
	preFilter = algorithms.Chain{
		algorithms.Kernel(algorithms.KernelPreSmooth),
	}

	detailBoost = algorithms.Chain{
		algorithms.ModulateOp{Brightness: 1.02, Saturation: 1.08},
		algorithms.Kernel(algorithms.KernelDetailBoost),
	}

	postFilter = algorithms.Chain{
		algorithms.Kernel(algorithms.KernelPostDetail),
		algorithms.ModulateOp{Brightness: 1.0, Saturation: 1.05},
		algorithms.Kernel(algorithms.KernelFinalAdaptive),
	}
)

// PreFilter lightly smooths the decoded image before analysis.
func PreFilter(buf *core.Buffer) (*core.Buffer, error) {
	return preFilter.Apply(buf)
}

// DetailBoost lifts brightness and saturation slightly, then applies a high-boost kernel.
func DetailBoost(buf *core.Buffer) (*core.Buffer, error) {
	return detailBoost.Apply(buf)
}

// PostFilter runs after resampling.
func PostFilter(buf *core.Buffer) (*core.Buffer, error) {
	return postFilter.Apply(buf)
}

// FinalSharpenParams picks the last unsharp mask from the overall scale factor.
func FinalSharpenParams(scale float64) algorithms.SharpenParams {
	switch {
	case scale > 3:
		return algorithms.DefaultSharpen(1.0).WithGain(1.5, 2.5)
	case scale > 2:
		return algorithms.DefaultSharpen(0.8).WithGain(1.2, 2.0)
	default:
		return algorithms.DefaultSharpen(0.6).WithGain(1.0, 1.5)
	}
}

// FinalSharpen applies the scale-dependent unsharp mask.
func FinalSharpen(buf *core.Buffer, scale float64) (*core.Buffer, error) {
	return algorithms.Sharpen(buf, FinalSharpenParams(scale))
}

// Stages lists the fixed chains by stage name, for inspection tools.
func Stages() map[string]algorithms.Chain {
	return map[string]algorithms.Chain{
		"prefilter":   preFilter,
		"detailboost": detailBoost,
		"postfilter":  postFilter,
	}
}

package algorithms

import (
	"sort"

	"progressive-upscaler/internal/core"
)

// Kernel names. The weights below are part of the output contract; changing any of
// them changes every encoded result.
const (
	KernelPreSmooth         = "pre-smooth"
	KernelSharpenMotion     = "sharpen-motion"
	KernelSharpenOutOfFocus = "sharpen-out-of-focus"
	KernelSharpenGeneral    = "sharpen-general"
	KernelDetailBoost       = "detail-boost"
	KernelPostDetail        = "post-detail"
	KernelFinalAdaptive     = "final-adaptive"
	KernelStepSmooth        = "step-smooth"
)

var kernelTable = map[string]core.Kernel{
	// Light smoothing ahead of analysis.
	KernelPreSmooth: core.MustKernel(KernelPreSmooth, 3, []float64{
		0.05, 0.1, 0.05,
		0.1, 0.4, 0.1,
		0.05, 0.1, 0.05,
	}),

	// Horizontal rows are reinforced, vertical neighbours suppressed.
	KernelSharpenMotion: core.MustKernel(KernelSharpenMotion, 3, []float64{
		-0.5, -1, -0.5,
		1, 3, 1,
		-0.5, -1, -0.5,
	}),

	// Local contrast: strong centre, negative inner ring, soft positive outer ring.
	KernelSharpenOutOfFocus: core.MustKernel(KernelSharpenOutOfFocus, 5, []float64{
		0.0625, 0.0625, 0.0625, 0.0625, 0.0625,
		0.0625, -0.1, -0.1, -0.1, 0.0625,
		0.0625, -0.1, 0.8, -0.1, 0.0625,
		0.0625, -0.1, -0.1, -0.1, 0.0625,
		0.0625, 0.0625, 0.0625, 0.0625, 0.0625,
	}),

	// High-boost.
	KernelSharpenGeneral: core.MustKernel(KernelSharpenGeneral, 3, []float64{
		-0.5, -0.5, -0.5,
		-0.5, 5.0, -0.5,
		-0.5, -0.5, -0.5,
	}),

	KernelDetailBoost: core.MustKernel(KernelDetailBoost, 3, []float64{
		-0.625, -0.625, -0.625,
		-0.625, 6.0, -0.625,
		-0.625, -0.625, -0.625,
	}),

	// Soft blur on the outer ring combined with a sharpening core.
	KernelPostDetail: core.MustKernel(KernelPostDetail, 5, []float64{
		0, 0.025, 0.05, 0.025, 0,
		0.025, -0.1, -0.2, -0.1, 0.025,
		0.05, -0.2, 1.8, -0.2, 0.05,
		0.025, -0.1, -0.2, -0.1, 0.025,
		0, 0.025, 0.05, 0.025, 0,
	}),

	KernelFinalAdaptive: core.MustKernel(KernelFinalAdaptive, 3, []float64{
		0, -0.25, 0,
		-0.25, 2, -0.25,
		0, -0.25, 0,
	}),

	// Soft averaging used after each resample step to tame sharpening halos.
	KernelStepSmooth: core.MustKernel(KernelStepSmooth, 3, []float64{
		0.1, 0.1, 0.1,
		0.1, 1.1, 0.1,
		0.1, 0.1, 0.1,
	}),
}

// LookupKernel returns a library kernel by name.
func LookupKernel(name string) (core.Kernel, bool) {
	k, ok := kernelTable[name]
	return k, ok
}

// MustLookupKernel panics on unknown names; used for the fixed stage chains.
func MustLookupKernel(name string) core.Kernel {
	k, ok := kernelTable[name]
	if !ok {
		panic("algorithms: unknown kernel " + name)
	}
	return k
}

// KernelNames lists the library in sorted order.
func KernelNames() []string {
	names := make([]string, 0, len(kernelTable))
	for name := range kernelTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

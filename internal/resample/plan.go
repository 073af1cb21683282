// Package resample grows a buffer to its target size in a few bounded steps.
package resample

import (
	"fmt"
	"math"

	"progressive-upscaler/internal/core"
)

// StepFactor is the growth applied to every intermediate step.
const StepFactor = 1.5

// TargetSize returns the output geometry for a uniform scale factor; each side is at
// least 1. Sides above core.MaxDimension are rejected before conversion to int.
func TargetSize(width, height int, scale float64) (int, int, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return 0, 0, fmt.Errorf("invalid scale factor: %v", scale)
	}
	fw := math.Round(float64(width) * scale)
	fh := math.Round(float64(height) * scale)
	if fw > core.MaxDimension || fh > core.MaxDimension {
		return 0, 0, fmt.Errorf("target dimensions too large: %.0fx%.0f (max: %d)", fw, fh, core.MaxDimension)
	}
	return max(int(fw), 1), max(int(fh), 1), nil
}

// PlanSteps splits the resize from (ow, oh) to (tw, th) into one to three steps.
// Up to 1.5x is a single step, up to 3x is two, anything larger is three. Every
// intermediate grows the previous size by StepFactor and the last step always lands
// on the target.
func PlanSteps(ow, oh, tw, th int) ([]core.ResizeStep, error) {
	if ow <= 0 || oh <= 0 {
		return nil, fmt.Errorf("invalid source size %dx%d", ow, oh)
	}
	if tw <= 0 || th <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", tw, th)
	}

	scale := math.Max(float64(tw)/float64(ow), float64(th)/float64(oh))
	target := core.ResizeStep{Width: tw, Height: th}

	var intermediates int
	switch {
	case scale <= 1.5:
		intermediates = 0
	case scale <= 3:
		intermediates = 1
	default:
		intermediates = 2
	}

	steps := make([]core.ResizeStep, 0, intermediates+1)
	w, h := ow, oh
	for i := 0; i < intermediates; i++ {
		w = int(math.Round(float64(w) * StepFactor))
		h = int(math.Round(float64(h) * StepFactor))
		steps = append(steps, core.ResizeStep{Width: w, Height: h})
	}
	return append(steps, target), nil
}

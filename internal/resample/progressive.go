package resample

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"progressive-upscaler/internal/algorithms"
	"progressive-upscaler/internal/core"
)

// StepSharpenSigma is the unsharp mask applied after every resize step.
const StepSharpenSigma = 1.4

// Progressive runs a resize plan. Each step resizes, sharpens and lightly smooths.
type Progressive struct {
	Resizer Resizer
	Logger  logrus.FieldLogger
}

// NewProgressive builds a runner; nil arguments select Lanczos3 and a discarding logger.
func NewProgressive(r Resizer, logger logrus.FieldLogger) *Progressive {
	if r == nil {
		r = Lanczos3{}
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Progressive{Resizer: r, Logger: logger}
}

// StepChain is the post-resize treatment of every step.
func StepChain() algorithms.Chain {
	return algorithms.Chain{
		algorithms.SharpenOp{Params: algorithms.DefaultSharpen(StepSharpenSigma)},
		algorithms.Kernel(algorithms.KernelStepSmooth),
	}
}

// Run applies plan to src. The context is checked before each step; a cancelled run
// returns the context error and no buffer.
func (p *Progressive) Run(ctx context.Context, src *core.Buffer, plan []core.ResizeStep) (*core.Buffer, error) {
	if len(plan) == 0 {
		return nil, fmt.Errorf("empty resize plan")
	}

	chain := StepChain()
	current := src
	for i, step := range plan {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		p.Logger.WithFields(logrus.Fields{
			"step":    i + 1,
			"of":      len(plan),
			"backend": p.Resizer.Name(),
		}).Debugf("Step %d: %dx%d -> %dx%d", i+1, current.Width, current.Height, step.Width, step.Height)

		resized, err := p.Resizer.Resize(current, step.Width, step.Height)
		if err != nil {
			return nil, fmt.Errorf("resize step %d (%s): %w", i+1, step, err)
		}
		current, err = chain.Apply(resized)
		if err != nil {
			return nil, fmt.Errorf("filter step %d (%s): %w", i+1, step, err)
		}
	}

	p.Logger.Debugf("Completed in %d steps", len(plan))
	return current, nil
}

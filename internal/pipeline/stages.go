package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"progressive-upscaler/internal/blur"
	"progressive-upscaler/internal/core"
	"progressive-upscaler/internal/enhance"
	"progressive-upscaler/internal/resample"
)

// state is threaded through the stage fold.
type state struct {
	buf   *core.Buffer
	class core.Classification
	plan  []core.ResizeStep
	scale float64
}

type stage struct {
	name string
	run  func(ctx context.Context, st *state) error
}

// filter is a stage that replaces the buffer. Its failures are processing errors.
func filter(name string, fn func(*core.Buffer) (*core.Buffer, error)) stage {
	return filterState(name, func(st *state) (*core.Buffer, error) {
		return fn(st.buf)
	})
}

func filterState(name string, fn func(*state) (*core.Buffer, error)) stage {
	return stage{name: name, run: func(_ context.Context, st *state) error {
		out, err := fn(st)
		if err != nil {
			return core.Failed(name, err)
		}
		st.buf = out
		return nil
	}}
}

// stages lists the enhancement fold in order.
func (u *Upscaler) stages() []stage {
	return []stage{
		filter("prefilter", enhance.PreFilter),
		{name: "analyze", run: u.analyze},
		filterState("deblur", func(st *state) (*core.Buffer, error) {
			return blur.Correct(st.buf, st.class)
		}),
		filter("detailboost", enhance.DetailBoost),
		{name: "resample", run: u.resample},
		filter("postfilter", enhance.PostFilter),
		filterState("finalsharpen", func(st *state) (*core.Buffer, error) {
			return enhance.FinalSharpen(st.buf, st.scale)
		}),
	}
}

// Enhance runs every stage between decode and encode. The input buffer is not modified.
// Cancellation is honoured between stages and between resize steps.
func (u *Upscaler) Enhance(ctx context.Context, src *core.Buffer, scale float64) (*core.Buffer, core.Classification, []core.ResizeStep, error) {
	const op = "enhance"
	if err := validateScale(scale); err != nil {
		return nil, core.Classification{}, nil, core.Invalid(op, err)
	}
	if err := src.Validate(); err != nil {
		return nil, core.Classification{}, nil, core.Invalid(op, err)
	}

	tw, th, err := resample.TargetSize(src.Width, src.Height, scale)
	if err != nil {
		return nil, core.Classification{}, nil, core.Invalid(op, err)
	}
	plan, err := resample.PlanSteps(src.Width, src.Height, tw, th)
	if err != nil {
		return nil, core.Classification{}, nil, core.Invalid(op, err)
	}

	st := &state{buf: src, plan: plan, scale: scale}
	for _, s := range u.stages() {
		select {
		case <-ctx.Done():
			u.logger.WithField("stage", s.name).Debug("Processing cancelled")
			return nil, core.Classification{}, nil, fmt.Errorf("cancelled before %s: %w", s.name, ctx.Err())
		default:
		}
		if err := u.runStage(ctx, s, st); err != nil {
			return nil, core.Classification{}, nil, err
		}
	}

	out := st.buf
	if out == src {
		out = src.Clone()
	}
	return out, st.class, plan, nil
}

func (u *Upscaler) runStage(ctx context.Context, s stage, st *state) error {
	start := time.Now()
	err := s.run(ctx, st)
	fields := logrus.Fields{
		"stage":    s.name,
		"duration": time.Since(start),
	}
	if err != nil {
		u.logger.WithFields(fields).WithError(err).Error("Stage failed")
		return err
	}
	fields["width"] = st.buf.Width
	fields["height"] = st.buf.Height
	u.logger.WithFields(fields).Debug("Stage completed")
	return nil
}

// analyze never fails the request: a degraded verdict is logged and processing
// continues as if the image were sharp.
func (u *Upscaler) analyze(_ context.Context, st *state) error {
	class, err := blur.Analyze(st.buf)
	if err != nil {
		u.logger.WithError(err).Warn("Blur analysis degraded, continuing without correction")
	}
	st.class = class
	u.logger.WithFields(logrus.Fields{
		"blurry":    class.IsBlurry,
		"blur_kind": class.Kind.String(),
		"score":     class.Score,
	}).Debug("Blur classification")
	return nil
}

func (u *Upscaler) resample(ctx context.Context, st *state) error {
	runner := resample.NewProgressive(u.resizer, u.logger.WithField("stage", "resample"))
	out, err := runner.Run(ctx, st.buf, st.plan)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("cancelled during resample: %w", err)
		}
		return core.Failed("resample", err)
	}
	st.buf = out
	return nil
}

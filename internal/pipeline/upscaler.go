// Package pipeline wires the decode, enhance, resample and encode stages into a single
// request-scoped call.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"progressive-upscaler/internal/codec"
	"progressive-upscaler/internal/core"
	"progressive-upscaler/internal/metrics"
	"progressive-upscaler/internal/resample"
)

// Upscaler holds configuration only. It is safe for concurrent use; every call owns
// its buffers.
type Upscaler struct {
	logger         logrus.FieldLogger
	resizer        resample.Resizer
	encoder        *codec.Encoder
	evaluator      *metrics.Evaluator
	diagnostics    bool
	defaultQuality core.QualityTier
	defaultFormat  core.Format
}

// Option configures an Upscaler.
type Option func(*Upscaler)

// WithResizer selects the resampling backend.
func WithResizer(r resample.Resizer) Option {
	return func(u *Upscaler) {
		if r != nil {
			u.resizer = r
		}
	}
}

// WithDiagnostics attaches quality metrics to every result.
func WithDiagnostics(enabled bool) Option {
	return func(u *Upscaler) {
		u.diagnostics = enabled
	}
}

// WithDefaultQuality sets the tier used when a request leaves quality empty.
func WithDefaultQuality(q core.QualityTier) Option {
	return func(u *Upscaler) {
		u.defaultQuality = q
	}
}

// WithDefaultFormat sets the format used when a request leaves the format empty.
func WithDefaultFormat(f core.Format) Option {
	return func(u *Upscaler) {
		u.defaultFormat = f
	}
}

// WithEncoder replaces the default encoder settings.
func WithEncoder(e *codec.Encoder) Option {
	return func(u *Upscaler) {
		if e != nil {
			u.encoder = e
		}
	}
}

// New returns an Upscaler. A nil logger discards all output.
func New(logger logrus.FieldLogger, opts ...Option) *Upscaler {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	u := &Upscaler{
		logger:         logger,
		resizer:        resample.Lanczos3{},
		encoder:        codec.DefaultEncoder(),
		defaultQuality: core.QualityHigh,
		defaultFormat:  core.FormatJPEG,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.diagnostics {
		u.evaluator = metrics.NewEvaluator()
	}
	return u
}

// Process decodes data, runs every stage and encodes the result.
func (u *Upscaler) Process(ctx context.Context, data []byte, req core.Request) (*core.Result, error) {
	const op = "process"
	start := time.Now()

	if err := validateScale(req.ScaleFactor); err != nil {
		return nil, core.Invalid(op, err)
	}
	if req.Quality < core.QualityLow || req.Quality > core.QualityHigh {
		return nil, core.Invalid(op, fmt.Errorf("unknown quality tier %d", int(req.Quality)))
	}

	src, inputFormat, err := codec.Decode(data)
	if err != nil {
		u.logger.WithError(err).Warn("Rejected undecodable input")
		return nil, err
	}

	log := u.logger.WithFields(logrus.Fields{
		"input_format": inputFormat,
		"width":        src.Width,
		"height":       src.Height,
		"scale":        req.ScaleFactor,
	})
	log.Info("Processing started")

	out, class, steps, err := u.Enhance(ctx, src, req.ScaleFactor)
	if err != nil {
		return nil, err
	}

	if req.FormatFallback {
		log.WithField("format", req.Format).Warn("Unsupported output format requested, using jpeg")
	}

	quality := codec.QualityFor(req.Quality)
	encoded, err := u.encoder.Encode(out, req.Format, quality)
	if err != nil {
		log.WithError(err).Error("Encoding failed")
		return nil, err
	}

	result := &core.Result{
		ImageBytes:     encoded,
		MimeType:       req.Format.MimeType(),
		IsBlurry:       class.IsBlurry,
		BlurKind:       class.Kind,
		Width:          out.Width,
		Height:         out.Height,
		Steps:          steps,
		Quality:        quality,
		FormatFallback: req.FormatFallback,
	}
	if u.evaluator != nil {
		result.Diagnostics = u.evaluator.Evaluate(src, out)
		if result.Diagnostics != nil {
			result.Diagnostics["blur_score"] = class.Score
		}
	}

	log.WithFields(logrus.Fields{
		"out_width":  out.Width,
		"out_height": out.Height,
		"blur_kind":  class.Kind.String(),
		"bytes":      len(encoded),
		"duration":   time.Since(start),
	}).Info("Processing completed")
	return result, nil
}

func validateScale(scale float64) error {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return fmt.Errorf("invalid scale factor: %v", scale)
	}
	return nil
}

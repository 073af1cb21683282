// Quality diagnostics comparing a source image with its upscaled result
package metrics

import (
	"gocv.io/x/gocv"

	"progressive-upscaler/internal/core"
	"progressive-upscaler/internal/cvmat"
)

// Metric compares two images that may differ in size.
type Metric interface {
	Measure(original, processed gocv.Mat) (float64, error)
	Description() string
	// HigherIsBetter tells report readers which way the value improves.
	HigherIsBetter() bool
}

type namedMetric struct {
	name   string
	metric Metric
}

// Evaluator runs metrics in registration order.
type Evaluator struct {
	entries []namedMetric
}

func NewEvaluator() *Evaluator {
	e := &Evaluator{}
	e.Add("contrast", NewContrast())
	e.Add("psnr", NewRoundTripPSNR())
	e.Add("sharpness", NewSharpness())
	return e
}

// Add registers m under name, replacing an earlier metric with the same name.
func (e *Evaluator) Add(name string, m Metric) {
	for i := range e.entries {
		if e.entries[i].name == name {
			e.entries[i].metric = m
			return
		}
	}
	e.entries = append(e.entries, namedMetric{name: name, metric: m})
}

// Lookup returns the metric registered under name.
func (e *Evaluator) Lookup(name string) (Metric, bool) {
	for _, entry := range e.entries {
		if entry.name == name {
			return entry.metric, true
		}
	}
	return nil, false
}

func (e *Evaluator) Names() []string {
	names := make([]string, len(e.entries))
	for i, entry := range e.entries {
		names[i] = entry.name
	}
	return names
}

// MeasureAll omits metrics that fail.
func (e *Evaluator) MeasureAll(original, processed gocv.Mat) map[string]float64 {
	out := make(map[string]float64, len(e.entries))
	for _, entry := range e.entries {
		v, err := entry.metric.Measure(original, processed)
		if err != nil {
			continue
		}
		out[entry.name] = v
	}
	return out
}

// Evaluate converts both buffers and runs every metric. It returns nil when either
// buffer cannot be converted.
func (e *Evaluator) Evaluate(original, processed *core.Buffer) map[string]float64 {
	orig, err := cvmat.ToMat(original)
	if err != nil {
		return nil
	}
	defer orig.Close()

	proc, err := cvmat.ToMat(processed)
	if err != nil {
		return nil
	}
	defer proc.Close()

	return e.MeasureAll(orig, proc)
}

// Operation registry over the pixel primitives
package algorithms

import (
	"fmt"
	"sort"

	"progressive-upscaler/internal/core"
)

// Op is one pure buffer transformation. Apply never mutates its input.
type Op interface {
	Apply(input *core.Buffer) (*core.Buffer, error)
	Name() string
}

// ConvolveOp wraps a kernel.
type ConvolveOp struct {
	Kernel core.Kernel
}

func (o ConvolveOp) Apply(input *core.Buffer) (*core.Buffer, error) {
	return Convolve(input, o.Kernel)
}

func (o ConvolveOp) Name() string {
	return "convolve:" + o.Kernel.Name()
}

// SharpenOp wraps an unsharp mask.
type SharpenOp struct {
	Params SharpenParams
}

func (o SharpenOp) Apply(input *core.Buffer) (*core.Buffer, error) {
	return Sharpen(input, o.Params)
}

func (o SharpenOp) Name() string {
	return fmt.Sprintf("sharpen:%g", o.Params.Sigma)
}

// ModulateOp wraps a brightness/saturation adjustment.
type ModulateOp struct {
	Brightness float64
	Saturation float64
}

func (o ModulateOp) Apply(input *core.Buffer) (*core.Buffer, error) {
	return Modulate(input, o.Brightness, o.Saturation)
}

func (o ModulateOp) Name() string {
	return fmt.Sprintf("modulate:%g,%g", o.Brightness, o.Saturation)
}

// Chain is a fixed sequence of ops applied left to right.
type Chain []Op

// Apply stops at the first failing op.
func (c Chain) Apply(input *core.Buffer) (*core.Buffer, error) {
	out := input
	for _, op := range c {
		next, err := op.Apply(out)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op.Name(), err)
		}
		out = next
	}
	if out == input {
		return input.Clone(), nil
	}
	return out, nil
}

// Names lists the op names in order.
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, op := range c {
		names[i] = op.Name()
	}
	return names
}

// Kernel returns a ConvolveOp for a library kernel.
func Kernel(name string) ConvolveOp {
	return ConvolveOp{Kernel: MustLookupKernel(name)}
}

var ops = make(map[string]Op)

func Register(name string, op Op) {
	ops[name] = op
}

func Get(name string) (Op, bool) {
	op, exists := ops[name]
	return op, exists
}

func Apply(name string, input *core.Buffer) (*core.Buffer, error) {
	op, exists := ops[name]
	if !exists {
		return nil, fmt.Errorf("operation not found: %s", name)
	}
	return op.Apply(input)
}

func IsValidOp(name string) bool {
	_, exists := ops[name]
	return exists
}

// OpNames lists registered operations in sorted order.
func OpNames() []string {
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	// Every library kernel is addressable by its own name.
	for _, name := range KernelNames() {
		Register(name, Kernel(name))
	}

	Register("sharpen-light", SharpenOp{Params: DefaultSharpen(1.0)})
	Register("sharpen-medium", SharpenOp{Params: DefaultSharpen(1.4)})
	Register("sharpen-strong", SharpenOp{Params: DefaultSharpen(2.0)})
	Register("vibrance", ModulateOp{Brightness: 1.0, Saturation: 1.05})
}

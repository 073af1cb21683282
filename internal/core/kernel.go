package core

import (
	"fmt"
	"math"
)

// Kernel is an immutable, odd-sized convolution matrix.
type Kernel struct {
	name    string
	size    int
	weights []float64
	scale   float64
}

// NewKernel copies weights (row-major, size×size) into a new Kernel.
// The normalisation scale is the sum of the weights, clipped to a minimum of 1.
func NewKernel(name string, size int, weights []float64) (Kernel, error) {
	if size < 1 || size%2 == 0 {
		return Kernel{}, fmt.Errorf("kernel %q: size must be odd, got %d", name, size)
	}
	if len(weights) != size*size {
		return Kernel{}, fmt.Errorf("kernel %q: expected %d weights, got %d", name, size*size, len(weights))
	}

	w := make([]float64, len(weights))
	sum := 0.0
	for i, v := range weights {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Kernel{}, fmt.Errorf("kernel %q: weight %d is not finite", name, i)
		}
		w[i] = v
		sum += v
	}

	scale := sum
	if scale < 1 {
		scale = 1
	}

	return Kernel{name: name, size: size, weights: w, scale: scale}, nil
}

// MustKernel is NewKernel for package-level tables.
func MustKernel(name string, size int, weights []float64) Kernel {
	k, err := NewKernel(name, size, weights)
	if err != nil {
		panic(err)
	}
	return k
}

// IdentityKernel returns a size×size kernel with a single centre tap of 1.
func IdentityKernel(size int) Kernel {
	w := make([]float64, size*size)
	w[(size*size)/2] = 1
	return MustKernel("identity", size, w)
}

func (k Kernel) Name() string   { return k.name }
func (k Kernel) Size() int      { return k.size }
func (k Kernel) Scale() float64 { return k.scale }

// Weight returns the tap at column dx, row dy, both relative to the centre.
func (k Kernel) Weight(dx, dy int) float64 {
	r := k.size / 2
	return k.weights[(dy+r)*k.size+(dx+r)]
}

// Weights returns a copy of the taps.
func (k Kernel) Weights() []float64 {
	out := make([]float64, len(k.weights))
	copy(out, k.weights)
	return out
}

// Sum is the plain sum of the taps, before clipping.
func (k Kernel) Sum() float64 {
	s := 0.0
	for _, v := range k.weights {
		s += v
	}
	return s
}

func (k Kernel) String() string {
	return fmt.Sprintf("%s %dx%d scale=%.3g", k.name, k.size, k.size, k.scale)
}

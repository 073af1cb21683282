package blur

import (
	"fmt"

	"progressive-upscaler/internal/algorithms"
	"progressive-upscaler/internal/core"
)

// ChainFor returns the fixed corrective chain for kind. BlurNone has no chain.
func ChainFor(kind core.BlurKind) algorithms.Chain {
	switch kind {
	case core.BlurMotion:
		return algorithms.Chain{
			algorithms.Kernel(algorithms.KernelSharpenMotion),
			algorithms.SharpenOp{Params: algorithms.DefaultSharpen(2.2)},
		}
	case core.BlurOutOfFocus:
		return algorithms.Chain{
			algorithms.SharpenOp{Params: algorithms.DefaultSharpen(1.8)},
			algorithms.Kernel(algorithms.KernelSharpenOutOfFocus),
		}
	case core.BlurGeneral:
		return algorithms.Chain{
			algorithms.SharpenOp{Params: algorithms.DefaultSharpen(2.0)},
			algorithms.Kernel(algorithms.KernelSharpenGeneral),
		}
	default:
		return nil
	}
}

// Correct runs the chain for the classification. Sharp images are returned as is,
// without any pass over the pixels.
func Correct(buf *core.Buffer, c core.Classification) (*core.Buffer, error) {
	if !c.IsBlurry || c.Kind == core.BlurNone {
		return buf, nil
	}
	chain := ChainFor(c.Kind)
	if len(chain) == 0 {
		return buf, nil
	}
	out, err := chain.Apply(buf)
	if err != nil {
		return nil, fmt.Errorf("deblur %s: %w", c.Kind, err)
	}
	return out, nil
}

package main

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"progressive-upscaler/internal/algorithms"
	"progressive-upscaler/internal/blur"
	"progressive-upscaler/internal/codec"
	"progressive-upscaler/internal/core"
	"progressive-upscaler/internal/enhance"
	imageio "progressive-upscaler/internal/io"
	"progressive-upscaler/internal/metrics"
	"progressive-upscaler/internal/resample"
)

func newKernelsCmd(_ *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "kernels",
		Short: "List the kernel library, operations, stage chains and supported formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Kernels:")
			for _, name := range algorithms.KernelNames() {
				k := algorithms.MustLookupKernel(name)
				fmt.Fprintf(out, "  %-22s %dx%d sum=%g scale=%g\n", name, k.Size(), k.Size(), k.Sum(), k.Scale())
				if verbose {
					fmt.Fprint(out, formatWeights(k, "    "))
				}
			}

			fmt.Fprintln(out, "Operations:")
			for _, name := range algorithms.OpNames() {
				op, _ := algorithms.Get(name)
				fmt.Fprintf(out, "  %-22s %s\n", name, op.Name())
			}

			fmt.Fprintln(out, "Stages:")
			stages := enhance.Stages()
			for _, name := range []string{"prefilter", "detailboost", "postfilter"} {
				fmt.Fprintf(out, "  %-22s %s\n", name, strings.Join(stages[name].Names(), " -> "))
			}
			fmt.Fprintf(out, "  %-22s %s\n", "resample step", strings.Join(resample.StepChain().Names(), " -> "))

			fmt.Fprintln(out, "Deblur chains:")
			for _, kind := range []core.BlurKind{core.BlurMotion, core.BlurOutOfFocus, core.BlurGeneral} {
				fmt.Fprintf(out, "  %-22s %s\n", kind, strings.Join(blur.ChainFor(kind).Names(), " -> "))
			}

			fmt.Fprintln(out, "Diagnostics:")
			ev := metrics.NewEvaluator()
			for _, name := range ev.Names() {
				m, _ := ev.Lookup(name)
				direction := "lower is better"
				if m.HigherIsBetter() {
					direction = "higher is better"
				}
				fmt.Fprintf(out, "  %-22s %s (%s)\n", name, m.Description(), direction)
			}

			fmt.Fprintf(out, "Input formats: %s\n", strings.Join(codec.SupportedInputFormats(), ", "))
			fmt.Fprintf(out, "Native extensions: %s (others are tried with OpenCV)\n", strings.Join(imageio.SupportedExtensions(), " "))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print kernel weights")
	return cmd
}

func formatWeights(k core.Kernel, prefix string) string {
	w := k.Weights()
	var b strings.Builder
	for _, row := range lo.Chunk(w, k.Size()) {
		cells := lo.Map(row, func(v float64, _ int) string { return fmt.Sprintf("%7.4f", v) })
		b.WriteString(prefix + strings.Join(cells, " ") + "\n")
	}
	return b.String()
}

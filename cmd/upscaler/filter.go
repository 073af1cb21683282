package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"progressive-upscaler/internal/algorithms"
	"progressive-upscaler/internal/codec"
	"progressive-upscaler/internal/core"
)

func newFilterCmd(a *app) *cobra.Command {
	var opName, format, outDir string

	cmd := &cobra.Command{
		Use:   "filter FILE...",
		Short: "Apply a single registered operation to each image, without resizing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !algorithms.IsValidOp(opName) {
				return fmt.Errorf("unknown operation %q (see the kernels command)", opName)
			}
			f, fellBack := core.ParseFormat(format)
			if fellBack {
				return fmt.Errorf("unknown output format %q", format)
			}
			tier, err := a.cfg.QualityTier()
			if err != nil {
				return err
			}
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			loader := a.loader()
			encoder := a.cfg.NewEncoder()
			for _, file := range args {
				data, err := loader.LoadImage(file)
				if err != nil {
					return err
				}
				buf, _, err := codec.Decode(data)
				if err != nil {
					return err
				}
				filtered, err := algorithms.Apply(opName, buf)
				if err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
				encoded, err := encoder.Encode(filtered, f, codec.QualityFor(tier))
				if err != nil {
					return err
				}
				out := outputPath(file, outDir, opName, f)
				if err := loader.SaveImage(encoded, out); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opName, "op", "", "operation name")
	cmd.Flags().StringVar(&format, "format", "png", "output format: jpeg, png or webp")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory for results (default: next to the input)")
	_ = cmd.MarkFlagRequired("op")
	return cmd
}

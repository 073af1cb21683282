package main

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"progressive-upscaler/internal/core"
	"progressive-upscaler/internal/resample"
)

func newPlanCmd(a *app) *cobra.Command {
	var width, height int
	var scale float64

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the resize steps for a source size and scale factor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if scale == 0 {
				scale = a.cfg.Defaults.Scale
			}
			tw, th, err := resample.TargetSize(width, height, scale)
			if err != nil {
				return err
			}
			steps, err := resample.PlanSteps(width, height, tw, th)
			if err != nil {
				return err
			}
			names := lo.Map(steps, func(s core.ResizeStep, _ int) string { return s.String() })
			fmt.Fprintf(cmd.OutOrStdout(), "%dx%d x%g -> %dx%d in %d step(s)\n", width, height, scale, tw, th, len(steps))
			for i, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s\n", i+1, name)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "source width")
	cmd.Flags().IntVar(&height, "height", 0, "source height")
	cmd.Flags().Float64Var(&scale, "scale", 0, "scale factor (default from config)")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")
	return cmd
}

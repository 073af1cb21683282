package main

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"progressive-upscaler/internal/blur"
	"progressive-upscaler/internal/codec"
	"progressive-upscaler/internal/core"
	"progressive-upscaler/internal/enhance"
)

type analysis struct {
	Input  string                   `json:"input"`
	Format string                   `json:"format"`
	Width  int                      `json:"width"`
	Height int                      `json:"height"`
	Stats  []core.ChannelStatistics `json:"stats,omitempty"`
	core.Classification
}

func newAnalyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Print the blur classification of each image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := a.loader()
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, file := range args {
				data, err := loader.LoadImage(file)
				if err != nil {
					return err
				}
				buf, format, err := codec.Decode(data)
				if err != nil {
					return err
				}
				smoothed, err := enhance.PreFilter(buf)
				if err != nil {
					return err
				}
				if err := enc.Encode(analyze(a.logger.WithField("file", file), smoothed, analysis{
					Input:  file,
					Format: format,
					Width:  buf.Width,
					Height: buf.Height,
				})); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// analyze fills in the verdict for a pre-filtered buffer. A degraded verdict is
// reported as such, without statistics.
func analyze(log logrus.FieldLogger, smoothed *core.Buffer, out analysis) analysis {
	class, err := blur.Analyze(smoothed)
	if err != nil {
		log.WithError(err).Warn("Statistics unavailable")
	} else {
		out.Stats, _ = blur.Stats(smoothed)
	}
	out.Classification = class
	return out
}

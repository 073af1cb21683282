package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"progressive-upscaler/internal/core"
	"progressive-upscaler/internal/pipeline"
	"progressive-upscaler/internal/resample"
)

type upscaleOptions struct {
	scale       float64
	quality     string
	format      string
	outDir      string
	resampler   string
	workers     int
	diagnostics bool
}

// fileSummary is printed for every processed file.
type fileSummary struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`

	MimeType       string             `json:"mimeType,omitempty"`
	IsBlurry       bool               `json:"isBlurry"`
	BlurKind       core.BlurKind      `json:"blurKind"`
	Width          int                `json:"width,omitempty"`
	Height         int                `json:"height,omitempty"`
	Steps          []core.ResizeStep  `json:"steps,omitempty"`
	Quality        int                `json:"quality,omitempty"`
	FormatFallback bool               `json:"formatFallback,omitempty"`
	Diagnostics    map[string]float64 `json:"diagnostics,omitempty"`
}

func newUpscaleCmd(a *app) *cobra.Command {
	opts := &upscaleOptions{}

	cmd := &cobra.Command{
		Use:   "upscale FILE...",
		Short: "Upscale images and write the results next to them or into --out-dir",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpscale(cmd, a, opts, lo.Uniq(args))
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.scale, "scale", 0, "scale factor (default from config)")
	f.StringVar(&opts.quality, "quality", "", "quality tier: low, medium or high")
	f.StringVar(&opts.format, "format", "", "output format: jpeg, png or webp")
	f.StringVar(&opts.outDir, "out-dir", "", "directory for results (default: next to the input)")
	f.StringVar(&opts.resampler, "resampler", "", "resampling backend: lanczos3 or lanczos4")
	f.IntVar(&opts.workers, "workers", 0, "files processed in parallel (default from config)")
	f.BoolVar(&opts.diagnostics, "diagnostics", false, "attach quality metrics to each summary")
	return cmd
}

func runUpscale(cmd *cobra.Command, a *app, opts *upscaleOptions, files []string) error {
	cfg := a.cfg
	if opts.scale == 0 {
		opts.scale = cfg.Defaults.Scale
	}
	if opts.resampler == "" {
		opts.resampler = cfg.Resampler
	}
	if opts.workers <= 0 {
		opts.workers = cfg.Workers
	}
	if !cmd.Flags().Changed("diagnostics") {
		opts.diagnostics = cfg.Diagnostics
	}

	resizer, err := resample.NewResizer(opts.resampler)
	if err != nil {
		return err
	}
	defaultQuality, err := cfg.QualityTier()
	if err != nil {
		return err
	}

	up := pipeline.New(a.logger,
		pipeline.WithResizer(resizer),
		pipeline.WithDiagnostics(opts.diagnostics),
		pipeline.WithDefaultQuality(defaultQuality),
		pipeline.WithDefaultFormat(cfg.Format()),
		pipeline.WithEncoder(cfg.NewEncoder()),
	)

	req, err := up.NewRequest(opts.scale, opts.quality, opts.format)
	if err != nil {
		return err
	}

	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	loader := a.loader()
	summaries := make([]fileSummary, len(files))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(opts.workers)

	for i, file := range files {
		g.Go(func() error {
			summaries[i] = fileSummary{Input: file}
			log := a.logger.WithField("file", file)

			data, err := loader.LoadImage(file)
			if err != nil {
				summaries[i].Error = err.Error()
				log.WithError(err).Error("Failed to read input")
				return nil
			}

			res, err := up.Process(ctx, data, req)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				summaries[i].Error = err.Error()
				log.WithError(err).Error("Failed to process")
				return nil
			}

			out := outputPath(file, opts.outDir, fmt.Sprintf("x%g", opts.scale), req.Format)
			if err := loader.SaveImage(res.ImageBytes, out); err != nil {
				summaries[i].Error = err.Error()
				log.WithError(err).Error("Failed to write output")
				return nil
			}

			summaries[i] = summarize(file, out, res)
			log.WithFields(logrus.Fields{
				"output":    out,
				"blur_kind": res.BlurKind.String(),
			}).Info("Upscaled")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, s := range summaries {
		if err := enc.Encode(s); err != nil {
			return err
		}
	}

	failed := lo.CountBy(summaries, func(s fileSummary) bool { return s.Error != "" })
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func summarize(input, output string, res *core.Result) fileSummary {
	return fileSummary{
		Input:          input,
		Output:         output,
		MimeType:       res.MimeType,
		IsBlurry:       res.IsBlurry,
		BlurKind:       res.BlurKind,
		Width:          res.Width,
		Height:         res.Height,
		Steps:          res.Steps,
		Quality:        res.Quality,
		FormatFallback: res.FormatFallback,
		Diagnostics:    res.Diagnostics,
	}
}

// outputPath names the result <base>_<suffix>.<ext> in outDir or beside the input.
func outputPath(input, outDir, suffix string, format core.Format) string {
	dir := filepath.Dir(input)
	if outDir != "" {
		dir = outDir
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	ext := format.String()
	if format == core.FormatJPEG {
		ext = "jpg"
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", base, suffix, ext))
}

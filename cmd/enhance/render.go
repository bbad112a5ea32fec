package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"image-enhancer/internal/algorithms"
	"image-enhancer/internal/core"
	"image-enhancer/internal/imageio"
	"image-enhancer/internal/metrics"
	"image-enhancer/internal/pipeline"
	"image-enhancer/internal/presets"
	"image-enhancer/internal/store"
)

func newRenderCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Enhance one image and write the result",
		Example: `  enhance render --in photo.jpg --preset vintage --out vintage.png
  enhance render --url https://example.com/a.png --scale 0.5 --sharpness 0.4 --metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, e)
		},
	}

	cmd.Flags().StringP("in", "i", "", "Input image file")
	cmd.Flags().String("url", "", "Input image URL")
	cmd.Flags().StringP("preset", "p", "", "Preset applied before individual parameters: "+strings.Join(presetNames(), ", "))
	for _, pi := range core.ParameterInfos() {
		cmd.Flags().Float64(pi.Name, pi.Default, pi.Description)
	}
	cmd.Flags().String("interp", "", "Resampling kernel (default from config)")
	cmd.Flags().StringP("out", "o", "", "Output file (default enhanced-image-<timestamp>)")
	cmd.Flags().String("format", "", "Output format: png, jpeg, bmp or tiff")
	cmd.Flags().Int("quality", 0, "JPEG quality 1-100 (default from config)")
	cmd.Flags().Bool("metrics", false, "Print quality metrics against the plain resized source")
	cmd.MarkFlagsMutuallyExclusive("in", "url")
	cmd.MarkFlagsOneRequired("in", "url")

	cmd.RegisterFlagCompletionFunc("preset", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return presetNames(), cobra.ShellCompDirectiveNoFileComp
	})
	cmd.RegisterFlagCompletionFunc("interp", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return algorithms.InterpolationNames(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runRender(cmd *cobra.Command, e *env) error {
	st, err := buildStore(cmd, e)
	if err != nil {
		return err
	}

	interp := e.cfg.Interpolation()
	if name, _ := cmd.Flags().GetString("interp"); name != "" {
		if interp, err = algorithms.ParseInterpolation(name); err != nil {
			return err
		}
	}

	outPath, opts, err := exportTarget(cmd, e)
	if err != nil {
		return err
	}

	src, err := acquire(cmd, e)
	if err != nil {
		return err
	}

	wantMetrics, _ := cmd.Flags().GetBool("metrics")
	session := pipeline.NewSession(st, e.logger)
	session.SetInterpolation(interp)
	var evaluator *metrics.Evaluator
	if wantMetrics {
		evaluator = metrics.NewEvaluator()
		session.SetEvaluator(evaluator)
	}

	var renderErr error
	session.SetCallbacks(nil, func(err error) { renderErr = err })
	if err := session.Load(src.Raster, src.Metadata()); err != nil {
		return err
	}
	if renderErr != nil {
		return renderErr
	}
	result := session.LastResult()

	if err := imageio.Save(outPath, result.Output, opts); err != nil {
		return err
	}

	e.logger.WithFields(logrus.Fields{
		"out":         outPath,
		"duration_ms": result.Duration.Milliseconds(),
	}).Info("Render written")

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Enhanced %s: %d × %d px -> %d × %d px (%s)\n",
		src.Name, src.Raster.Width, src.Raster.Height, result.Output.Width, result.Output.Height, result.State.Params)
	if result.State.Preset != "" {
		fmt.Fprintf(out, "Preset: %s (sepia %t)\n", result.State.Preset, result.State.Sepia)
	}
	fmt.Fprintf(out, "Wrote %s (%s)\n", outPath, opts.Format)

	if evaluator != nil {
		if result.Metrics == nil {
			return fmt.Errorf("quality metrics unavailable")
		}
		printReport(out, evaluator.Names(), evaluator.Interpret(result.Metrics))
	}
	return nil
}

// buildStore applies the configured scale, the preset and then the explicit
// parameter flags, in that order.
func buildStore(cmd *cobra.Command, e *env) (*store.Store, error) {
	st := store.New()

	initial, err := e.cfg.InitialPartial()
	if err != nil {
		return nil, err
	}
	st.Set(initial)

	if name, _ := cmd.Flags().GetString("preset"); name != "" {
		if err := st.ApplyPreset(name); err != nil {
			return nil, err
		}
	}

	for _, pi := range core.ParameterInfos() {
		if !cmd.Flags().Changed(pi.Name) {
			continue
		}
		v, _ := cmd.Flags().GetFloat64(pi.Name)
		p, err := core.PartialOf(pi.Name, v)
		if err != nil {
			return nil, err
		}
		if err := st.SetChecked(p); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// exportTarget resolves the output path and encoder settings. The format
// comes from --format, then the --out extension, then the config.
func exportTarget(cmd *cobra.Command, e *env) (string, imageio.ExportOptions, error) {
	opts := e.cfg.ExportOptions()
	outPath, _ := cmd.Flags().GetString("out")

	if name, _ := cmd.Flags().GetString("format"); name != "" {
		f, err := imageio.ParseFormat(name)
		if err != nil {
			return "", opts, fmt.Errorf("%w: %v", core.ErrInvalidParameter, err)
		}
		opts.Format = f
	} else if f, ok := imageio.FormatFromPath(outPath); ok {
		opts.Format = f
	}

	if cmd.Flags().Changed("quality") {
		q, _ := cmd.Flags().GetInt("quality")
		if q < 1 || q > 100 {
			return "", opts, &core.ParamError{Field: "quality", Value: float64(q), Reason: "must be in 1-100"}
		}
		opts.JPEGQuality = q
	}

	if outPath == "" {
		outPath = filepath.Join(e.cfg.Export.Directory, imageio.DefaultFilename(time.Now(), opts.Format))
	}
	return outPath, opts, nil
}

func acquire(cmd *cobra.Command, e *env) (imageio.Source, error) {
	loader := imageio.NewLoader(e.logger, e.cfg.LoaderOptions())
	if path, _ := cmd.Flags().GetString("in"); path != "" {
		return loader.LoadFile(path)
	}
	raw, _ := cmd.Flags().GetString("url")
	src, err := loader.LoadURL(cmd.Context(), raw)
	if err != nil {
		return imageio.Source{}, fmt.Errorf("%s: %w", imageio.Describe(err), err)
	}
	return src, nil
}

func presetNames() []string {
	names := presets.Names()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}

// printReport lists the metrics in registry order; names missing from the
// report are skipped.
func printReport(w io.Writer, names []string, report metrics.QualityReport) {
	fmt.Fprintf(w, "Quality: %s (score %.1f)\n", report.Analysis.QualityLevel, report.OverallScore)
	for _, name := range names {
		v, ok := report.Metrics[name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %-15s %.4f\n", name, v)
	}
	for i, issue := range report.Analysis.Issues {
		fmt.Fprintf(w, "  ! %s. %s\n", issue, report.Analysis.Suggestions[i])
	}
}

// Quality metrics comparing an enhanced output with its reference
package metrics

import (
	"fmt"
	"sort"
	"time"

	"gocv.io/x/gocv"

	"image-enhancer/internal/core"
)

// Metric defines the interface for quality metrics
type Metric interface {
	// Calculate compares two single-channel 8-bit images of equal size.
	Calculate(reference, output gocv.Mat) (float64, error)

	GetName() string
	GetDescription() string

	// GetRange returns the practical value range (min, max)
	GetRange() (float64, float64)

	// IsHigherBetter returns true if higher values indicate better quality
	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with the default metrics registered.
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}
	e.RegisterDefaultMetrics()
	return e
}

func (e *Evaluator) RegisterDefaultMetrics() {
	e.Register("psnr", NewPSNR())
	e.Register("ssim", NewSSIM())
	e.Register("mse", NewMSE())
	e.Register("contrast_ratio", NewContrastRatio())
	e.Register("sharpness", NewSharpness())
}

func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names returns the registered metric names, sorted.
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, reference, output gocv.Mat) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}
	return metric.Calculate(reference, output)
}

// CalculateAll calculates all registered metrics. Failing metrics are left out.
func (e *Evaluator) CalculateAll(reference, output gocv.Mat) map[string]float64 {
	results := make(map[string]float64)
	for name, metric := range e.metrics {
		if value, err := metric.Calculate(reference, output); err == nil {
			results[name] = value
		}
	}
	return results
}

// Evaluate scores output against reference. Both rasters must have the same size.
func (e *Evaluator) Evaluate(reference, output *core.Raster) (map[string]float64, error) {
	if err := reference.Validate(); err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	if err := output.Validate(); err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	if reference.Width != output.Width || reference.Height != output.Height {
		return nil, fmt.Errorf("dimension mismatch: %dx%d vs %dx%d",
			reference.Width, reference.Height, output.Width, output.Height)
	}

	ref, err := ToGrayMat(reference)
	if err != nil {
		return nil, err
	}
	defer ref.Close()

	out, err := ToGrayMat(output)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	return e.CalculateAll(ref, out), nil
}

// GetMetricInfo returns information about all metrics
func (e *Evaluator) GetMetricInfo() map[string]MetricInfo {
	info := make(map[string]MetricInfo)
	for name, metric := range e.metrics {
		min, max := metric.GetRange()
		info[name] = MetricInfo{
			Name:         metric.GetName(),
			Description:  metric.GetDescription(),
			Range:        [2]float64{min, max},
			HigherBetter: metric.IsHigherBetter(),
		}
	}
	return info
}

// MetricInfo provides metadata about a metric
type MetricInfo struct {
	Name         string
	Description  string
	Range        [2]float64 // [min, max]
	HigherBetter bool
}

// QualityReport contains comprehensive quality assessment
type QualityReport struct {
	OverallScore float64            `json:"overall_score"`
	Metrics      map[string]float64 `json:"metrics"`
	Analysis     QualityAnalysis    `json:"analysis"`
	Timestamp    string             `json:"timestamp"`
}

// QualityAnalysis provides interpretation of metrics
type QualityAnalysis struct {
	QualityLevel string   `json:"quality_level"` // "excellent", "good", "fair", "poor"
	Issues       []string `json:"issues"`
	Suggestions  []string `json:"suggestions"`
}

// GenerateReport evaluates both rasters and interprets the result.
func (e *Evaluator) GenerateReport(reference, output *core.Raster) (QualityReport, error) {
	m, err := e.Evaluate(reference, output)
	if err != nil {
		return QualityReport{}, err
	}
	return e.Interpret(m), nil
}

// Interpret builds a report from already calculated metrics.
func (e *Evaluator) Interpret(m map[string]float64) QualityReport {
	return QualityReport{
		OverallScore: e.calculateOverallScore(m),
		Metrics:      m,
		Analysis:     e.analyzeQuality(m),
		Timestamp:    time.Now().Format("2006-01-02 15:04:05"),
	}
}

// calculateOverallScore calculates a weighted similarity score in percent.
// The ratio metrics have no "better" direction and only feed the analysis.
func (e *Evaluator) calculateOverallScore(metrics map[string]float64) float64 {
	weights := map[string]float64{
		"psnr": 0.4,
		"ssim": 0.6,
	}

	totalWeight := 0.0
	weightedSum := 0.0
	for name, weight := range weights {
		if value, exists := metrics[name]; exists {
			weightedSum += e.normalizeMetric(name, value) * weight
			totalWeight += weight
		}
	}
	if totalWeight == 0 {
		return 0
	}
	return (weightedSum / totalWeight) * 100
}

// normalizeMetric normalizes a metric value to 0-1 range
func (e *Evaluator) normalizeMetric(name string, value float64) float64 {
	metric, exists := e.metrics[name]
	if !exists {
		return 0
	}

	min, max := metric.GetRange()
	if value < min {
		value = min
	}
	if value > max {
		value = max
	}
	if max == min {
		return 1.0
	}

	normalized := (value - min) / (max - min)
	if !metric.IsHigherBetter() {
		normalized = 1.0 - normalized
	}
	return normalized
}

func (e *Evaluator) analyzeQuality(metrics map[string]float64) QualityAnalysis {
	analysis := QualityAnalysis{
		Issues:      make([]string, 0),
		Suggestions: make([]string, 0),
	}

	overallScore := e.calculateOverallScore(metrics)
	switch {
	case overallScore >= 90:
		analysis.QualityLevel = "excellent"
	case overallScore >= 75:
		analysis.QualityLevel = "good"
	case overallScore >= 60:
		analysis.QualityLevel = "fair"
	default:
		analysis.QualityLevel = "poor"
	}

	if psnr, exists := metrics["psnr"]; exists && psnr < 20 {
		analysis.Issues = append(analysis.Issues, "Low PSNR: output deviates strongly from the source")
		analysis.Suggestions = append(analysis.Suggestions, "Move brightness and contrast closer to 100%")
	}
	if ssim, exists := metrics["ssim"]; exists && ssim < 0.7 {
		analysis.Issues = append(analysis.Issues, "Low SSIM: image structure changed noticeably")
		analysis.Suggestions = append(analysis.Suggestions, "Reduce contrast or sharpness")
	}
	if sharp, exists := metrics["sharpness"]; exists && sharp > 1.8 {
		analysis.Issues = append(analysis.Issues, "Strong sharpening amplifies noise and halos")
		analysis.Suggestions = append(analysis.Suggestions, "Lower sharpness below 50%")
	}
	if cr, exists := metrics["contrast_ratio"]; exists && cr < 0.5 {
		analysis.Issues = append(analysis.Issues, "Contrast is strongly reduced")
		analysis.Suggestions = append(analysis.Suggestions, "Raise contrast or pick a different preset")
	}
	return analysis
}

// Concrete implementations of quality metrics
package metrics

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// ssimWindow is the Gaussian window of the local SSIM map. Smaller images
// fall back to one global window.
const ssimWindow = 11

// PSNR implements Peak Signal-to-Noise Ratio, capped at 100 dB for identical images.
type PSNR struct{}

func NewPSNR() *PSNR { return &PSNR{} }

func (p *PSNR) Calculate(reference, output gocv.Mat) (float64, error) {
	if err := checkPair(reference, output); err != nil {
		return 0, err
	}
	ref := ensureGrayscale(reference)
	defer closeIfCopy(ref, reference)
	out := ensureGrayscale(output)
	defer closeIfCopy(out, output)

	psnr := gocv.PSNR(ref, out)
	if math.IsInf(psnr, 1) || psnr > 100 {
		return 100.0, nil
	}
	return psnr, nil
}

func (p *PSNR) GetName() string              { return "PSNR" }
func (p *PSNR) GetDescription() string       { return "Peak Signal-to-Noise Ratio against the resized source" }
func (p *PSNR) GetRange() (float64, float64) { return 0, 100 }
func (p *PSNR) IsHigherBetter() bool         { return true }

// SSIM implements Structural Similarity Index metric
type SSIM struct{}

func NewSSIM() *SSIM { return &SSIM{} }

func (s *SSIM) Calculate(reference, output gocv.Mat) (float64, error) {
	if err := checkPair(reference, output); err != nil {
		return 0, err
	}
	ref := ensureGrayscale(reference)
	defer closeIfCopy(ref, reference)
	out := ensureGrayscale(output)
	defer closeIfCopy(out, output)

	f1, f2 := gocv.NewMat(), gocv.NewMat()
	defer f1.Close()
	defer f2.Close()
	ref.ConvertTo(&f1, gocv.MatTypeCV32F)
	out.ConvertTo(&f2, gocv.MatTypeCV32F)

	if ref.Rows() < ssimWindow || ref.Cols() < ssimWindow {
		return globalSSIM(f1, f2), nil
	}
	return localSSIM(f1, f2), nil
}

// SSIM constants
const (
	ssimC1 = 6.5025  // (0.01 * 255)^2
	ssimC2 = 58.5225 // (0.03 * 255)^2
)

func globalSSIM(f1, f2 gocv.Mat) float64 {
	mu1 := f1.Mean().Val1
	mu2 := f2.Mean().Val1

	f1Sq, f2Sq, f1f2 := gocv.NewMat(), gocv.NewMat(), gocv.NewMat()
	defer f1Sq.Close()
	defer f2Sq.Close()
	defer f1f2.Close()
	gocv.Multiply(f1, f1, &f1Sq)
	gocv.Multiply(f2, f2, &f2Sq)
	gocv.Multiply(f1, f2, &f1f2)

	sigma1Sq := f1Sq.Mean().Val1 - mu1*mu1
	sigma2Sq := f2Sq.Mean().Val1 - mu2*mu2
	sigma12 := f1f2.Mean().Val1 - mu1*mu2

	num := (2*mu1*mu2 + ssimC1) * (2*sigma12 + ssimC2)
	den := (mu1*mu1 + mu2*mu2 + ssimC1) * (sigma1Sq + sigma2Sq + ssimC2)
	if den == 0 {
		return 1.0
	}
	return num / den
}

func localSSIM(f1, f2 gocv.Mat) float64 {
	window := image.Pt(ssimWindow, ssimWindow)
	blur := func(src gocv.Mat, dst *gocv.Mat) {
		gocv.GaussianBlur(src, dst, window, 1.5, 1.5, gocv.BorderDefault)
	}

	mu1, mu2 := gocv.NewMat(), gocv.NewMat()
	defer mu1.Close()
	defer mu2.Close()
	blur(f1, &mu1)
	blur(f2, &mu2)

	mu1Sq, mu2Sq, mu1Mu2 := gocv.NewMat(), gocv.NewMat(), gocv.NewMat()
	defer mu1Sq.Close()
	defer mu2Sq.Close()
	defer mu1Mu2.Close()
	gocv.Multiply(mu1, mu1, &mu1Sq)
	gocv.Multiply(mu2, mu2, &mu2Sq)
	gocv.Multiply(mu1, mu2, &mu1Mu2)

	// sigma = blur(f*g) - mu_f*mu_g
	variance := func(a, b, muProduct gocv.Mat) gocv.Mat {
		prod, out := gocv.NewMat(), gocv.NewMat()
		defer prod.Close()
		gocv.Multiply(a, b, &prod)
		blur(prod, &out)
		gocv.Subtract(out, muProduct, &out)
		return out
	}
	sigma1Sq := variance(f1, f1, mu1Sq)
	defer sigma1Sq.Close()
	sigma2Sq := variance(f2, f2, mu2Sq)
	defer sigma2Sq.Close()
	sigma12 := variance(f1, f2, mu1Mu2)
	defer sigma12.Close()

	num1 := mu1Mu2.Clone()
	defer num1.Close()
	num1.MultiplyFloat(2)
	num1.AddFloat(ssimC1)

	num2 := sigma12.Clone()
	defer num2.Close()
	num2.MultiplyFloat(2)
	num2.AddFloat(ssimC2)

	den1, den2 := gocv.NewMat(), gocv.NewMat()
	defer den1.Close()
	defer den2.Close()
	gocv.Add(mu1Sq, mu2Sq, &den1)
	den1.AddFloat(ssimC1)
	gocv.Add(sigma1Sq, sigma2Sq, &den2)
	den2.AddFloat(ssimC2)

	numerator, denominator, ssimMap := gocv.NewMat(), gocv.NewMat(), gocv.NewMat()
	defer numerator.Close()
	defer denominator.Close()
	defer ssimMap.Close()
	gocv.Multiply(num1, num2, &numerator)
	gocv.Multiply(den1, den2, &denominator)
	gocv.Divide(numerator, denominator, &ssimMap)

	return ssimMap.Mean().Val1
}

func (s *SSIM) GetName() string              { return "SSIM" }
func (s *SSIM) GetDescription() string       { return "Structural Similarity Index - perceptual similarity" }
func (s *SSIM) GetRange() (float64, float64) { return 0, 1 }
func (s *SSIM) IsHigherBetter() bool         { return true }

// MSE implements Mean Squared Error metric
type MSE struct{}

func NewMSE() *MSE { return &MSE{} }

func (m *MSE) Calculate(reference, output gocv.Mat) (float64, error) {
	if err := checkPair(reference, output); err != nil {
		return 0, err
	}
	ref := ensureGrayscale(reference)
	defer closeIfCopy(ref, reference)
	out := ensureGrayscale(output)
	defer closeIfCopy(out, output)

	// 8-bit multiplication saturates, so square in float.
	f1, f2 := gocv.NewMat(), gocv.NewMat()
	defer f1.Close()
	defer f2.Close()
	ref.ConvertTo(&f1, gocv.MatTypeCV32F)
	out.ConvertTo(&f2, gocv.MatTypeCV32F)

	diff, diffSq := gocv.NewMat(), gocv.NewMat()
	defer diff.Close()
	defer diffSq.Close()
	gocv.AbsDiff(f1, f2, &diff)
	gocv.Multiply(diff, diff, &diffSq)
	return diffSq.Mean().Val1, nil
}

func (m *MSE) GetName() string              { return "MSE" }
func (m *MSE) GetDescription() string       { return "Mean Squared Error between images" }
func (m *MSE) GetRange() (float64, float64) { return 0, 65025 }
func (m *MSE) IsHigherBetter() bool         { return false }

// ContrastRatio compares the luminance standard deviation of output and reference.
type ContrastRatio struct{}

func NewContrastRatio() *ContrastRatio { return &ContrastRatio{} }

func (c *ContrastRatio) Calculate(reference, output gocv.Mat) (float64, error) {
	if err := checkPair(reference, output); err != nil {
		return 0, err
	}
	ref := ensureGrayscale(reference)
	defer closeIfCopy(ref, reference)
	out := ensureGrayscale(output)
	defer closeIfCopy(out, output)

	refContrast := stdDev(ref)
	if refContrast == 0 {
		return 1.0, nil
	}
	return stdDev(out) / refContrast, nil
}

func (c *ContrastRatio) GetName() string              { return "Contrast Ratio" }
func (c *ContrastRatio) GetDescription() string       { return "Output contrast relative to the source" }
func (c *ContrastRatio) GetRange() (float64, float64) { return 0, 2 }
func (c *ContrastRatio) IsHigherBetter() bool         { return true }

// Sharpness compares the variance of the Laplacian of output and reference.
type Sharpness struct{}

func NewSharpness() *Sharpness { return &Sharpness{} }

func (s *Sharpness) Calculate(reference, output gocv.Mat) (float64, error) {
	if err := checkPair(reference, output); err != nil {
		return 0, err
	}
	refSharpness := s.calculateSharpness(reference)
	if refSharpness == 0 {
		return 1.0, nil
	}
	return s.calculateSharpness(output) / refSharpness, nil
}

func (s *Sharpness) calculateSharpness(input gocv.Mat) float64 {
	gray := ensureGrayscale(input)
	defer closeIfCopy(gray, input)

	laplacian := gocv.NewMat()
	defer laplacian.Close()
	gocv.Laplacian(gray, &laplacian, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	sd := stdDev(laplacian)
	return sd * sd
}

func (s *Sharpness) GetName() string              { return "Sharpness" }
func (s *Sharpness) GetDescription() string       { return "Edge energy relative to the source" }
func (s *Sharpness) GetRange() (float64, float64) { return 0, 2 }
func (s *Sharpness) IsHigherBetter() bool         { return true }

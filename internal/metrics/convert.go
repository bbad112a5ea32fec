package metrics

import (
	"fmt"
	"runtime"

	"gocv.io/x/gocv"

	"image-enhancer/internal/core"
)

// ToGrayMat converts a raster into a single-channel 8-bit Mat owned by the
// caller. Alpha is ignored.
func ToGrayMat(r *core.Raster) (gocv.Mat, error) {
	if err := r.Validate(); err != nil {
		return gocv.NewMat(), err
	}
	rgba, err := gocv.NewMatFromBytes(r.Height, r.Width, gocv.MatTypeCV8UC4, r.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("wrap raster: %w", err)
	}
	defer rgba.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(rgba, &gray, gocv.ColorRGBAToGray)
	runtime.KeepAlive(r.Pix)
	if gray.Empty() {
		gray.Close()
		return gocv.NewMat(), fmt.Errorf("grayscale conversion failed")
	}
	return gray, nil
}

func checkPair(reference, output gocv.Mat) error {
	if reference.Empty() || output.Empty() {
		return fmt.Errorf("empty images")
	}
	if reference.Rows() != output.Rows() || reference.Cols() != output.Cols() {
		return fmt.Errorf("dimension mismatch")
	}
	return nil
}

// ensureGrayscale returns m itself when it already has one channel; otherwise
// a new Mat the caller must close.
func ensureGrayscale(m gocv.Mat) gocv.Mat {
	if m.Channels() == 1 {
		return m
	}
	g := gocv.NewMat()
	gocv.CvtColor(m, &g, gocv.ColorBGRToGray)
	return g
}

func closeIfCopy(m, original gocv.Mat) {
	if m.Ptr() != original.Ptr() {
		m.Close()
	}
}

func stdDev(m gocv.Mat) float64 {
	mean, dev := gocv.NewMat(), gocv.NewMat()
	defer mean.Close()
	defer dev.Close()
	gocv.MeanStdDev(m, &mean, &dev)
	return dev.GetDoubleAt(0, 0)
}

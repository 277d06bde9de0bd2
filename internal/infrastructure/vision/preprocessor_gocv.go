//go:build gocv
// +build gocv

package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"crack-classifier/internal/domain/entity"
)

// Preprocessor строит карту границ средствами OpenCV.
type Preprocessor struct {
	Size int
}

// NewPreprocessor создаёт препроцессор с выходом 227×227.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{Size: entity.EdgeMapSize}
}

// Preprocess читает изображение как BGR и прогоняет фиксированный пайплайн.
func (p *Preprocessor) Preprocess(path string) (entity.EdgeMap, error) {
	src := gocv.IMRead(path, gocv.IMReadColor)
	defer src.Close()
	if src.Empty() {
		return entity.EdgeMap{}, fmt.Errorf("%w: %s", entity.ErrMissingImage, path)
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(src, &resized, image.Pt(p.Size, p.Size), 0, 0, gocv.InterpolationLinear)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(resized, &gray, gocv.ColorBGRToGray)

	equalized := gocv.NewMat()
	defer equalized.Close()
	gocv.EqualizeHist(gray, &equalized)

	// Нормализация и обратное масштабирование с отбрасыванием дробной части.
	pix := equalized.ToBytes()
	requantize(pix)
	quantized, err := gocv.NewMatFromBytes(p.Size, p.Size, gocv.MatTypeCV8U, pix)
	if err != nil {
		return entity.EdgeMap{}, fmt.Errorf("requantize: %w", err)
	}
	defer quantized.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(quantized, &edges, cannyLow, cannyHigh)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(edges, &blur, image.Pt(blurKernelSize, blurKernelSize), 0, 0, gocv.BorderDefault)

	kernel := gocv.Ones(dilateKernel, dilateKernel, gocv.MatTypeCV8U)
	defer kernel.Close()

	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(blur, &dilated, kernel)

	out := entity.EdgeMap{
		Width:  dilated.Cols(),
		Height: dilated.Rows(),
		Pix:    dilated.ToBytes(),
	}
	if err := out.Validate(); err != nil {
		return entity.EdgeMap{}, err
	}
	return out, nil
}

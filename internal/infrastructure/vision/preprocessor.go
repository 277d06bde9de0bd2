//go:build !gocv
// +build !gocv

package vision

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"crack-classifier/internal/domain/entity"
)

// Preprocessor строит карту границ без OpenCV.
// Ресайз и фильтры повторяют целочисленную арифметику OpenCV.
type Preprocessor struct {
	Size int
}

// NewPreprocessor создаёт препроцессор с выходом 227×227.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{Size: entity.EdgeMapSize}
}

// Preprocess декодирует изображение и прогоняет фиксированный пайплайн.
func (p *Preprocessor) Preprocess(path string) (entity.EdgeMap, error) {
	img, err := decodeFile(path)
	if err != nil {
		return entity.EdgeMap{}, fmt.Errorf("%w: %s: %v", entity.ErrMissingImage, path, err)
	}

	r, g, b, w, h := rgbPlanes(img)
	gray := grayFromRGB(
		resizeLinear(r, w, h, p.Size, p.Size),
		resizeLinear(g, w, h, p.Size, p.Size),
		resizeLinear(b, w, h, p.Size, p.Size),
	)
	equalizeHist(gray)
	requantize(gray)

	edges := canny(gray, p.Size, p.Size, cannyLow, cannyHigh)
	blurred := gaussianBlur5(edges, p.Size, p.Size)

	return entity.EdgeMap{
		Width:  p.Size,
		Height: p.Size,
		Pix:    dilate3(blurred, p.Size, p.Size),
	}, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("empty image")
	}
	return img, nil
}

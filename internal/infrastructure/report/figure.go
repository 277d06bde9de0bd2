package report

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"crack-classifier/internal/domain/entity"
	"crack-classifier/internal/domain/port"
	"crack-classifier/internal/logger"
)

const (
	cellSize   = 120
	marginLeft = 90
	marginTop  = 50
	charWidth  = 7
)

// Figure сохраняет матрицу ошибок в PNG как тепловую карту
type Figure struct {
	path string
}

var _ port.ReportRenderer = (*Figure)(nil)

// NewFigure создаёт рендерер в файл path
func NewFigure(path string) *Figure {
	return &Figure{path: path}
}

// Render рисует и сохраняет картинку
func (f *Figure) Render(ctx context.Context, report *entity.MetricsReport) error {
	img := DrawConfusionMatrix(report.ConfusionMatrix)

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create figure dir: %w", err)
	}
	file, err := os.Create(f.path)
	if err != nil {
		return fmt.Errorf("create figure: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encode figure: %w", err)
	}

	logger.Info(logger.Fields{"path": f.path}, "confusion matrix saved")
	return nil
}

// DrawConfusionMatrix строки: истинный класс, столбцы: предсказанный.
// Цвет ячейки от белого к синему по доле от максимума.
func DrawConfusionMatrix(cm [entity.NumClasses][entity.NumClasses]int) *image.RGBA {
	n := entity.NumClasses
	w := marginLeft + n*cellSize + 10
	h := marginTop + n*cellSize + 40
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	peak := 1
	for i := range cm {
		for j := range cm[i] {
			peak = max(peak, cm[i][j])
		}
	}

	for i := range cm {
		for j := range cm[i] {
			share := float64(cm[i][j]) / float64(peak)
			cell := image.Rect(
				marginLeft+j*cellSize, marginTop+i*cellSize,
				marginLeft+(j+1)*cellSize, marginTop+(i+1)*cellSize,
			)
			draw.Draw(img, cell, &image.Uniform{C: heat(share)}, image.Point{}, draw.Src)

			text := color.Color(color.Black)
			if share > 0.5 {
				text = color.White
			}
			label := fmt.Sprintf("%d", cm[i][j])
			drawText(img, label, cell.Min.X+(cellSize-len(label)*charWidth)/2, cell.Min.Y+cellSize/2+4, text)
		}
	}

	for k, name := range entity.ClassNames {
		// подписи столбцов сверху, строк слева
		drawText(img, name, marginLeft+k*cellSize+(cellSize-len(name)*charWidth)/2, marginTop-10, color.Black)
		drawText(img, name, 8, marginTop+k*cellSize+cellSize/2+4, color.Black)
	}
	drawText(img, "Predicted", marginLeft+(n*cellSize-9*charWidth)/2, marginTop+n*cellSize+25, color.Black)
	drawText(img, "True", 8, marginTop-30, color.Black)

	return img
}

func heat(share float64) color.RGBA {
	lerp := func(from, to uint8) uint8 {
		return uint8(float64(from) + (float64(to)-float64(from))*share)
	}
	return color.RGBA{R: lerp(247, 8), G: lerp(251, 48), B: lerp(255, 107), A: 255}
}

func drawText(img draw.Image, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

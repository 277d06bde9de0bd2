//go:build !gocv
// +build !gocv

package vision

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// rgbPlanes раскладывает изображение на 8-битные каналы R, G, B без альфы.
func rgbPlanes(img image.Image) (r, g, b []uint8, w, h int) {
	bounds := img.Bounds()
	w, h = bounds.Dx(), bounds.Dy()

	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.Copy(nrgba, image.Point{}, img, bounds, xdraw.Src, nil)

	r, g, b = make([]uint8, w*h), make([]uint8, w*h), make([]uint8, w*h)
	for i := 0; i < w*h; i++ {
		r[i] = nrgba.Pix[4*i]
		g[i] = nrgba.Pix[4*i+1]
		b[i] = nrgba.Pix[4*i+2]
	}
	return r, g, b, w, h
}

// Коэффициенты линейной интерполяции в фиксированной точке, как INTER_LINEAR для 8U.
const (
	resizeCoefBits  = 11
	resizeCoefScale = 1 << resizeCoefBits
)

// linearTap два соседних отсчёта и их веса для одной выходной координаты.
type linearTap struct {
	i0, i1 int
	a0, a1 int
}

func linearTaps(src, dst int) []linearTap {
	scale := 1 / (float64(dst) / float64(src))
	taps := make([]linearTap, dst)
	for d := range taps {
		f := float32((float64(d)+0.5)*scale - 0.5)
		s := int(math.Floor(float64(f)))
		f -= float32(s)
		if s < 0 {
			s, f = 0, 0
		}
		if s >= src-1 {
			s, f = src-1, 0
		}
		taps[d] = linearTap{
			i0: s,
			i1: min(s+1, src-1),
			a0: int(math.RoundToEven(float64((1 - f) * resizeCoefScale))),
			a1: int(math.RoundToEven(float64(f * resizeCoefScale))),
		}
	}
	return taps
}

// resizeLinear двухточечная билинейная интерполяция одного канала без
// расширения ядра при уменьшении, как cv::resize с INTER_LINEAR.
// Уменьшение ровно в два раза OpenCV выполняет как INTER_AREA.
func resizeLinear(src []uint8, sw, sh, dw, dh int) []uint8 {
	if sw == 2*dw && sh == 2*dh {
		return halveArea(src, sw, dw, dh)
	}

	xt := linearTaps(sw, dw)
	yt := linearTaps(sh, dh)

	rows := make([][]int, sh)
	horizontal := func(y int) []int {
		if rows[y] == nil {
			row := make([]int, dw)
			line := src[y*sw : (y+1)*sw]
			for x, t := range xt {
				row[x] = int(line[t.i0])*t.a0 + int(line[t.i1])*t.a1
			}
			rows[y] = row
		}
		return rows[y]
	}

	const shift = 2 * resizeCoefBits
	out := make([]uint8, dw*dh)
	for y, t := range yt {
		r0, r1 := horizontal(t.i0), horizontal(t.i1)
		for x := 0; x < dw; x++ {
			v := (r0[x]*t.a0 + r1[x]*t.a1 + (1 << (shift - 1))) >> shift
			out[y*dw+x] = uint8(clamp(v, 0, 255))
		}
	}
	return out
}

// halveArea среднее по блокам 2×2 с округлением.
func halveArea(src []uint8, sw, dw, dh int) []uint8 {
	out := make([]uint8, dw*dh)
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			i := 2*y*sw + 2*x
			sum := int(src[i]) + int(src[i+1]) + int(src[i+sw]) + int(src[i+sw+1])
			out[y*dw+x] = uint8((sum + 2) >> 2)
		}
	}
	return out
}

// grayFromRGB яркость по формуле OpenCV BGR2GRAY (фиксированная точка, 14 бит).
func grayFromRGB(r, g, b []uint8) []uint8 {
	out := make([]uint8, len(r))
	for i := range out {
		v := (int(b[i])*1868 + int(g[i])*9617 + int(r[i])*4899 + (1 << 13)) >> 14
		out[i] = uint8(v)
	}
	return out
}

// equalizeHist глобальное выравнивание гистограммы, как cv::equalizeHist.
func equalizeHist(pix []uint8) {
	var hist [256]int
	for _, v := range pix {
		hist[v]++
	}

	i := 0
	for i < 256 && hist[i] == 0 {
		i++
	}
	if i == 256 {
		return
	}

	total := len(pix)
	if hist[i] == total {
		for j := range pix {
			pix[j] = uint8(i)
		}
		return
	}

	var lut [256]uint8
	scale := float32(255) / float32(total-hist[i])
	sum := 0
	lut[i] = 0
	for i++; i < 256; i++ {
		sum += hist[i]
		lut[i] = saturate(math.RoundToEven(float64(float32(sum) * scale)))
	}

	for j, v := range pix {
		pix[j] = lut[v]
	}
}

func saturate(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

// Состояния пикселя при подавлении немаксимумов.
const (
	edgeNone uint8 = iota
	edgeWeak
	edgeStrong
)

// tg22 это tan(22.5°) в фиксированной точке с 15 битами.
const (
	cannyShift = 15
	tg22       = 13573
)

// canny детектор границ: Собель 3×3, L1-норма градиента,
// подавление немаксимумов и гистерезис.
func canny(src []uint8, w, h, low, high int) []uint8 {
	at := func(x, y int) int {
		x = clamp(x, 0, w-1)
		y = clamp(y, 0, h-1)
		return int(src[y*w+x])
	}

	dx := make([]int, w*h)
	dy := make([]int, w*h)
	mag := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			i := y*w + x
			dx[i], dy[i] = gx, gy
			mag[i] = abs(gx) + abs(gy)
		}
	}

	magAt := func(x, y int) int {
		if x < 0 || x >= w || y < 0 || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	state := make([]uint8, w*h)
	stack := make([]int, 0, 1024)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m <= low {
				continue
			}

			xs, ys := dx[i], dy[i]
			ax := abs(xs)
			ay := abs(ys) << cannyShift
			tg22x := ax * tg22

			var keep bool
			if ay < tg22x {
				keep = m > magAt(x-1, y) && m >= magAt(x+1, y)
			} else {
				tg67x := tg22x + (ax << (cannyShift + 1))
				if ay > tg67x {
					keep = m > magAt(x, y-1) && m >= magAt(x, y+1)
				} else {
					s := 1
					if xs^ys < 0 {
						s = -1
					}
					keep = m > magAt(x-s, y-1) && m > magAt(x+s, y+1)
				}
			}
			if !keep {
				continue
			}

			if m > high {
				state[i] = edgeStrong
				stack = append(stack, i)
			} else {
				state[i] = edgeWeak
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for ny := y - 1; ny <= y+1; ny++ {
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == edgeWeak {
					state[j] = edgeStrong
					stack = append(stack, j)
				}
			}
		}
	}

	out := make([]uint8, w*h)
	for i, s := range state {
		if s == edgeStrong {
			out[i] = 255
		}
	}
	return out
}

// gaussianBlur5 размытие ядром 5×5 с автоматической сигмой:
// OpenCV берёт табличное ядро [1 4 6 4 1]/16, граница reflect-101.
func gaussianBlur5(src []uint8, w, h int) []uint8 {
	kernel := [5]int{1, 4, 6, 4, 1}

	tmp := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for k := 0; k < 5; k++ {
				sum += kernel[k] * int(src[y*w+reflect101(x+k-2, w)])
			}
			tmp[y*w+x] = sum
		}
	}

	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for k := 0; k < 5; k++ {
				sum += kernel[k] * tmp[reflect101(y+k-2, h)*w+x]
			}
			out[y*w+x] = uint8((sum + 128) >> 8)
		}
	}
	return out
}

// dilate3 морфологическое расширение квадратом 3×3, одна итерация.
// Пиксели за границей не участвуют.
func dilate3(src []uint8, w, h int) []uint8 {
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			maxVal := uint8(0)
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					nx, ny := x+kx, y+ky
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					if v := src[ny*w+nx]; v > maxVal {
						maxVal = v
					}
				}
			}
			out[y*w+x] = maxVal
		}
	}
	return out
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

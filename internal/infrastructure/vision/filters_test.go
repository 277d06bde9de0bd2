//go:build !gocv
// +build !gocv

package vision

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualizeHist(t *testing.T) {
	tests := []struct {
		name string
		in   []uint8
		want []uint8
	}{
		{"uniform", []uint8{7, 7, 7, 7}, []uint8{7, 7, 7, 7}},
		{"two levels", []uint8{10, 10, 100, 100}, []uint8{0, 0, 255, 255}},
		{"three levels", []uint8{0, 50, 50, 200}, []uint8{0, 170, 170, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pix := append([]uint8(nil), tt.in...)
			equalizeHist(pix)
			require.Equal(t, tt.want, pix)
		})
	}
}

func TestCanny_VerticalStep(t *testing.T) {
	const w, h = 20, 10
	src := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			src[y*w+x] = 255
		}
	}

	out := canny(src, w, h, cannyLow, cannyHigh)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			want := uint8(0)
			if x == w/2-1 {
				want = 255
			}
			require.Equal(t, want, out[y*w+x], "pixel (%d,%d)", x, y)
		}
	}
}

func TestCanny_Flat(t *testing.T) {
	src := make([]uint8, 16*16)
	for i := range src {
		src[i] = 200
	}
	for _, v := range canny(src, 16, 16, cannyLow, cannyHigh) {
		require.Zero(t, v)
	}
}

func TestGaussianBlur5_Impulse(t *testing.T) {
	const w, h = 9, 9
	src := make([]uint8, w*h)
	src[4*w+4] = 255

	out := gaussianBlur5(src, w, h)
	require.Equal(t, uint8(36), out[4*w+4]) // 255*36/256
	require.Equal(t, out[4*w+3], out[4*w+5])
	require.Equal(t, out[3*w+4], out[5*w+4])
	require.Zero(t, out[0])
}

func TestDilate3(t *testing.T) {
	const w, h = 5, 5
	src := make([]uint8, w*h)
	src[2*w+2] = 9

	out := dilate3(src, w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			want := uint8(0)
			if x >= 1 && x <= 3 && y >= 1 && y <= 3 {
				want = 9
			}
			require.Equal(t, want, out[y*w+x])
		}
	}
}

func TestReflect101(t *testing.T) {
	require.Equal(t, 1, reflect101(-1, 5))
	require.Equal(t, 2, reflect101(-2, 5))
	require.Equal(t, 3, reflect101(5, 5))
	require.Equal(t, 2, reflect101(6, 5))
	require.Equal(t, 0, reflect101(3, 1))
}

func TestResizeLinear_OnePixelLine(t *testing.T) {
	const side = 500
	src := make([]uint8, side*side)
	for i := range src {
		src[i] = 255
	}
	for x := 0; x < side; x++ {
		src[250*side+x] = 0
	}

	out := resizeLinear(src, side, side, 227, 227)

	// строка 113 попадает ровно между исходными 249 и 250
	for y := 0; y < 227; y++ {
		want := uint8(255)
		if y == 113 {
			want = 128
		}
		for x := 0; x < 227; x++ {
			require.Equal(t, want, out[y*227+x], "pixel (%d,%d)", x, y)
		}
	}
}

func TestResizeLinear_SameSizeIsIdentity(t *testing.T) {
	src := []uint8{
		0, 10, 20,
		30, 40, 50,
	}
	require.Equal(t, src, resizeLinear(src, 3, 2, 3, 2))
}

func TestResizeLinear_Upscale(t *testing.T) {
	// 2 -> 4: координаты -0.25, 0.25, 0.75, 1.25
	out := resizeLinear([]uint8{0, 200}, 2, 1, 4, 1)
	require.Equal(t, []uint8{0, 50, 150, 200}, out)
}

func TestResizeLinear_HalvingUsesArea(t *testing.T) {
	src := []uint8{
		0, 4, 8, 8,
		4, 4, 8, 9,
	}
	require.Equal(t, []uint8{3, 8}, resizeLinear(src, 4, 2, 2, 1))
}

func TestGrayFromRGB(t *testing.T) {
	gray := grayFromRGB([]uint8{255, 0, 0, 255}, []uint8{0, 255, 0, 255}, []uint8{0, 0, 255, 255})
	require.Equal(t, []uint8{76, 150, 29, 255}, gray)
}

package entity

import "fmt"

// EdgeMapSize сторона карты границ в пикселях
const EdgeMapSize = 227

// EdgeMap одноканальная карта границ 227×227, значения 0..255
type EdgeMap struct {
	Width  int
	Height int
	Pix    []uint8 // построчно, без отступов
}

// NewEdgeMap создаёт пустую карту стандартного размера
func NewEdgeMap() EdgeMap {
	return EdgeMap{
		Width:  EdgeMapSize,
		Height: EdgeMapSize,
		Pix:    make([]uint8, EdgeMapSize*EdgeMapSize),
	}
}

// At возвращает значение пикселя
func (m EdgeMap) At(x, y int) uint8 {
	return m.Pix[y*m.Width+x]
}

// Validate проверяет, что карта плотная и имеет форму 227×227
func (m EdgeMap) Validate() error {
	if m.Width != EdgeMapSize || m.Height != EdgeMapSize {
		return fmt.Errorf("%w: edge map is %dx%d, want %dx%d", ErrShapeMismatch, m.Width, m.Height, EdgeMapSize, EdgeMapSize)
	}
	if len(m.Pix) != m.Width*m.Height {
		return fmt.Errorf("%w: edge map holds %d values, want %d", ErrShapeMismatch, len(m.Pix), m.Width*m.Height)
	}
	return nil
}

// NonZero считает ненулевые пиксели
func (m EdgeMap) NonZero() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

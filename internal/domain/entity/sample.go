package entity

import "fmt"

// Class индекс класса в one-hot метке
type Class int

const (
	ClassPositive Class = 0 // Есть трещина
	ClassNegative Class = 1 // Нет трещины
)

// NumClasses количество классов
const NumClasses = 2

// ClassNames имена классов в порядке индексов, совпадают с папками датасета
var ClassNames = [NumClasses]string{"Positive", "Negative"}

func (c Class) String() string {
	if c < 0 || int(c) >= NumClasses {
		return fmt.Sprintf("Class(%d)", int(c))
	}
	return ClassNames[c]
}

// ParseClass возвращает класс по имени папки
func ParseClass(name string) (Class, error) {
	for i, n := range ClassNames {
		if n == name {
			return Class(i), nil
		}
	}
	return 0, fmt.Errorf("unknown class %q", name)
}

// OneHot метка длины 2, ровно одна компонента равна 1
type OneHot [NumClasses]float64

// NewOneHot кодирует класс
func NewOneHot(c Class) OneHot {
	var h OneHot
	h[c] = 1
	return h
}

// Class возвращает индекс максимальной компоненты
func (h OneHot) Class() Class {
	best := 0
	for i := 1; i < NumClasses; i++ {
		if h[i] > h[best] {
			best = i
		}
	}
	return Class(best)
}

// Probabilities выход модели для одного образца
type Probabilities [NumClasses]float64

// Class возвращает arg-max, при равенстве младший индекс
func (p Probabilities) Class() Class {
	return OneHot(p).Class()
}

// LabeledSample карта границ и её метка
type LabeledSample struct {
	ID    string // путь к исходному файлу
	Image EdgeMap
	Label OneHot
}

// Dataset уже перемешанные выборки
type Dataset struct {
	Train      []LabeledSample
	Validation []LabeledSample
	Test       []LabeledSample
}

// Labels возвращает индексы классов выборки
func Labels(samples []LabeledSample) []Class {
	out := make([]Class, len(samples))
	for i, s := range samples {
		out[i] = s.Label.Class()
	}
	return out
}

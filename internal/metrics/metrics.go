// Package metrics считает метрики классификации без побочных эффектов.
package metrics

import (
	"fmt"
	"strings"

	"crack-classifier/internal/domain/entity"
)

// ArgMax индексы предсказанных классов.
func ArgMax(probs []entity.Probabilities) []entity.Class {
	out := make([]entity.Class, len(probs))
	for i, p := range probs {
		out[i] = p.Class()
	}
	return out
}

// ConfusionMatrix строки: истинный класс, столбцы: предсказанный.
func ConfusionMatrix(yTrue, yPred []entity.Class) [entity.NumClasses][entity.NumClasses]int {
	var cm [entity.NumClasses][entity.NumClasses]int
	for i := range yTrue {
		cm[yTrue[i]][yPred[i]]++
	}
	return cm
}

// IoU пересечение над объединением множеств индексов, где истина и прогноз
// равны классу cls. Пустое объединение даёт 0.
func IoU(yTrue, yPred []entity.Class, cls entity.Class) float64 {
	inter, union := 0, 0
	for i := range yTrue {
		t, p := yTrue[i] == cls, yPred[i] == cls
		if t && p {
			inter++
		}
		if t || p {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// PerClass точность, полнота и F1 каждого класса. Деление на ноль даёт 0.
func PerClass(cm [entity.NumClasses][entity.NumClasses]int) []entity.ClassMetrics {
	out := make([]entity.ClassMetrics, entity.NumClasses)
	for c := 0; c < entity.NumClasses; c++ {
		tp := cm[c][c]
		support, predicted := 0, 0
		for k := 0; k < entity.NumClasses; k++ {
			support += cm[c][k]
			predicted += cm[k][c]
		}

		m := entity.ClassMetrics{Class: entity.Class(c).String(), Support: support}
		m.Precision = ratio(tp, predicted)
		m.Recall = ratio(tp, support)
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		out[c] = m
	}
	return out
}

// Weighted среднее по классам с весами, равными поддержке.
func Weighted(per []entity.ClassMetrics) (precision, recall, f1 float64) {
	total := 0
	for _, m := range per {
		total += m.Support
	}
	if total == 0 {
		return 0, 0, 0
	}
	for _, m := range per {
		w := float64(m.Support) / float64(total)
		precision += w * m.Precision
		recall += w * m.Recall
		f1 += w * m.F1
	}
	return precision, recall, f1
}

// Accuracy доля точных совпадений, trace(cm)/sum(cm).
func Accuracy(cm [entity.NumClasses][entity.NumClasses]int) float64 {
	trace, total := 0, 0
	for i := range cm {
		for j := range cm[i] {
			total += cm[i][j]
			if i == j {
				trace += cm[i][j]
			}
		}
	}
	return ratio(trace, total)
}

// Compute собирает полный отчёт по истинным и предсказанным классам.
func Compute(yTrue, yPred []entity.Class, iouClass entity.Class) (*entity.MetricsReport, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("%w: %d labels with %d predictions", entity.ErrShapeMismatch, len(yTrue), len(yPred))
	}
	for i := range yTrue {
		if !valid(yTrue[i]) || !valid(yPred[i]) {
			return nil, fmt.Errorf("sample %d: class out of range", i)
		}
	}

	cm := ConfusionMatrix(yTrue, yPred)
	per := PerClass(cm)
	precision, recall, f1 := Weighted(per)

	return &entity.MetricsReport{
		Samples:         len(yTrue),
		Precision:       precision,
		Recall:          recall,
		F1:              f1,
		Accuracy:        Accuracy(cm),
		IoU:             IoU(yTrue, yPred, iouClass),
		IoUClass:        iouClass.String(),
		ConfusionMatrix: cm,
		PerClass:        per,
		Report:          ClassificationReport(per, Accuracy(cm)),
		Undefined:       len(yTrue) == 0,
	}, nil
}

// ClassificationReport таблица в формате sklearn classification_report.
func ClassificationReport(per []entity.ClassMetrics, accuracy float64) string {
	width := len("weighted avg")
	for _, m := range per {
		if len(m.Class) > width {
			width = len(m.Class)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")

	total := 0
	var macroP, macroR, macroF float64
	for _, m := range per {
		fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, m.Class, m.Precision, m.Recall, m.F1, m.Support)
		total += m.Support
		macroP += m.Precision
		macroR += m.Recall
		macroF += m.F1
	}
	b.WriteString("\n")

	if n := float64(len(per)); n > 0 {
		macroP, macroR, macroF = macroP/n, macroR/n, macroF/n
	}
	wp, wr, wf := Weighted(per)

	fmt.Fprintf(&b, "%*s %9s %9s %9.2f %9d\n", width, "accuracy", "", "", accuracy, total)
	fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, "macro avg", macroP, macroR, macroF, total)
	fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, "weighted avg", wp, wr, wf, total)
	return b.String()
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func valid(c entity.Class) bool {
	return c >= 0 && int(c) < entity.NumClasses
}

package model

import "math"

// probClip граница отсечения вероятностей в кросс-энтропии.
const probClip = 1e-7

func softmax(logits, out []float64) {
	maxVal := logits[0]
	for _, v := range logits[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	sum := 0.0
	for i, v := range logits {
		out[i] = math.Exp(v - maxVal)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
}

// crossEntropy категориальная кросс-энтропия одного образца.
func crossEntropy(probs, target []float64) float64 {
	loss := 0.0
	for k, y := range target {
		if y == 0 {
			continue
		}
		p := math.Min(math.Max(probs[k], probClip), 1-probClip)
		loss -= y * math.Log(p)
	}
	return loss
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

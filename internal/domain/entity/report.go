package entity

// ClassMetrics строка отчёта по одному классу
type ClassMetrics struct {
	Class     string  `yaml:"class"`
	Precision float64 `yaml:"precision"`
	Recall    float64 `yaml:"recall"`
	F1        float64 `yaml:"f1"`
	Support   int     `yaml:"support"`
}

// MetricsReport итог оценки на тестовой выборке
type MetricsReport struct {
	RunID           string                      `yaml:"run_id,omitempty"`
	Samples         int                         `yaml:"samples"`
	Loss            float64                     `yaml:"loss"`
	LossAccuracy    float64                     `yaml:"loss_accuracy"` // из встроенного прохода оценки
	Precision       float64                     `yaml:"precision"`
	Recall          float64                     `yaml:"recall"`
	F1              float64                     `yaml:"f1"`
	Accuracy        float64                     `yaml:"accuracy"`
	IoU             float64                     `yaml:"iou"`
	IoUClass        string                      `yaml:"iou_class"`
	ConfusionMatrix [NumClasses][NumClasses]int `yaml:"confusion_matrix"` // строки: истина, столбцы: прогноз
	PerClass        []ClassMetrics              `yaml:"per_class"`
	Report          string                      `yaml:"classification_report"`
	Undefined       bool                        `yaml:"undefined,omitempty"` // пустая выборка
}

// EpochStats метрики одной эпохи
type EpochStats struct {
	Epoch              int     `yaml:"epoch"`
	Loss               float64 `yaml:"loss"`
	Accuracy           float64 `yaml:"accuracy"`
	ValidationLoss     float64 `yaml:"val_loss"`
	ValidationAccuracy float64 `yaml:"val_accuracy"`
}

// TrainingHistory история обучения по эпохам
type TrainingHistory struct {
	Epochs []EpochStats `yaml:"epochs"`
}

// Last возвращает последнюю эпоху
func (h *TrainingHistory) Last() (EpochStats, bool) {
	if h == nil || len(h.Epochs) == 0 {
		return EpochStats{}, false
	}
	return h.Epochs[len(h.Epochs)-1], true
}

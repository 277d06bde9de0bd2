package entity

import "github.com/google/uuid"

// Stage этап пайплайна
type Stage string

const (
	StageCreated     Stage = "created"     // Пайплайн собран
	StageInitialized Stage = "initialized" // Данные загружены, модель построена
	StageTrained     Stage = "trained"     // Модель обучена
	StageEvaluated   Stage = "evaluated"   // Отчёт получен
)

// Run представляет один запуск обучения и оценки
type Run struct {
	ID    string
	Stage Stage
}

// NewRun создаёт запуск с новым идентификатором
func NewRun() *Run {
	return &Run{
		ID:    uuid.NewString(),
		Stage: StageCreated,
	}
}

// SetStage обновляет этап запуска
func (r *Run) SetStage(stage Stage) {
	r.Stage = stage
}

// Is проверяет текущий этап
func (r *Run) Is(stages ...Stage) bool {
	for _, s := range stages {
		if r.Stage == s {
			return true
		}
	}
	return false
}

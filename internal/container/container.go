package container

import (
	app "crack-classifier/internal/application"
	"crack-classifier/internal/domain/entity"
	"crack-classifier/internal/domain/port"
	"crack-classifier/internal/model"
)

// Settings параметры сервисов приложения
type Settings struct {
	Model    model.Options
	Trainer  app.TrainerConfig
	Workers  int
	IoUClass entity.Class
}

type Container struct {
	FeatureService    *app.FeatureService
	TrainingService   *app.TrainingService
	EvaluationService *app.EvaluationService
	Pipeline          *app.Pipeline
}

func New(
	source port.DatasetSource,
	backbone port.FeatureExtractor,
	featureRepo port.FeatureRepository,
	settings Settings,
	renderers ...port.ReportRenderer,
) *Container {
	featureService := app.NewFeatureService(featureRepo, settings.Workers)
	trainingService := app.NewTrainingService(featureService, settings.Trainer)
	evaluationService := app.NewEvaluationService(featureService, settings.IoUClass)
	pipeline := app.NewPipeline(source, backbone, settings.Model, trainingService, evaluationService, renderers...)

	return &Container{
		FeatureService:    featureService,
		TrainingService:   trainingService,
		EvaluationService: evaluationService,
		Pipeline:          pipeline,
	}
}

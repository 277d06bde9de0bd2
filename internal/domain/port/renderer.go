package port

import (
	"context"

	"crack-classifier/internal/domain/entity"
)

// ReportRenderer выводит отчёт: консоль, картинка, файл
type ReportRenderer interface {
	Render(ctx context.Context, report *entity.MetricsReport) error
}

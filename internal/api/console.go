package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"crack-classifier/internal/domain/entity"
	"crack-classifier/internal/domain/port"
)

const (
	msgHeader     = "📊 Результаты на тестовой выборке"
	msgUndefined  = "⚠️ Тестовая выборка пуста, метрики не определены."
	msgLoss       = "Loss: %.4f"
	msgTestAcc    = "Test accuracy: %.4f"
	msgPrecision  = "Precision: %.4f"
	msgRecall     = "Recall: %.4f"
	msgF1         = "F1 Score: %.4f"
	msgAccuracy   = "Accuracy: %.4f"
	msgIoU        = "IoU (%s): %.4f"
	msgConfusion  = "Confusion matrix (rows: true, columns: predicted):"
	msgReportHead = "Classification report:"
)

// Renderer печатает отчёт в текстовом виде
type Renderer struct {
	out io.Writer
}

var _ port.ReportRenderer = (*Renderer)(nil)

// NewRenderer создаёт рендерер, nil означает stdout
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{out: out}
}

// Render печатает метрики, матрицу ошибок и отчёт по классам
func (r *Renderer) Render(ctx context.Context, report *entity.MetricsReport) error {
	var b strings.Builder

	b.WriteString(msgHeader + "\n")
	if report.Undefined {
		b.WriteString(msgUndefined + "\n")
	}
	fmt.Fprintf(&b, msgLoss+"\n", report.Loss)
	fmt.Fprintf(&b, msgTestAcc+"\n", report.LossAccuracy)
	fmt.Fprintf(&b, msgPrecision+"\n", report.Precision)
	fmt.Fprintf(&b, msgRecall+"\n", report.Recall)
	fmt.Fprintf(&b, msgF1+"\n", report.F1)
	fmt.Fprintf(&b, msgAccuracy+"\n", report.Accuracy)
	fmt.Fprintf(&b, msgIoU+"\n", report.IoUClass, report.IoU)

	b.WriteString("\n" + msgConfusion + "\n")
	b.WriteString(confusionTable(report.ConfusionMatrix))

	if report.Report != "" {
		b.WriteString("\n" + msgReportHead + "\n")
		b.WriteString(report.Report)
	}

	_, err := io.WriteString(r.out, b.String())
	return err
}

// confusionTable матрица ошибок с подписями классов
func confusionTable(cm [entity.NumClasses][entity.NumClasses]int) string {
	width := 0
	for _, n := range entity.ClassNames {
		width = max(width, len(n))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s", width, "")
	for _, n := range entity.ClassNames {
		fmt.Fprintf(&b, " %*s", width, n)
	}
	b.WriteString("\n")
	for i, row := range cm {
		fmt.Fprintf(&b, "%*s", width, entity.ClassNames[i])
		for _, v := range row {
			fmt.Fprintf(&b, " %*d", width, v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

package alerts

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Alert es una dosis vencida lista para notificar.
type Alert struct {
	RecordID  string
	UserID    string
	Pill      string
	Container int
	DueAt     time.Time
}

// Notifier es el puerto de salida del dispatcher. La entrega real
// (push/SMS) queda fuera de este servicio; el adapter default loguea.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// LogNotifier escribe la alerta al log estructurado.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, a Alert) error {
	n.log.Info("dose alert",
		zap.String("record_id", a.RecordID),
		zap.String("user_id", a.UserID),
		zap.String("pill", a.Pill),
		zap.Int("container", a.Container),
		zap.Time("due_at", a.DueAt),
	)
	return nil
}

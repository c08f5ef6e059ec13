package broker

import (
	"context"
	"log/slog"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
)

// LogPublisher stands in for RabbitMQ when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event *domain.TransferCompleted) error {
	p.logger.InfoContext(ctx, "event published",
		slog.String("type", domain.EventTransferCompleted),
		slog.String("correlation_id", event.CorrelationID),
		slog.String("sender_id", event.SenderID),
		slog.String("recipient_id", event.RecipientID),
		slog.Int64("amount", event.Amount),
	)
	return nil
}

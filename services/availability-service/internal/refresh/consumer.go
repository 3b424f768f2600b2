package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/md-rashed-zaman/apptavailability/libs/kafkax"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer turns booking events into snapshot refresh triggers. Payloads are not decoded: any
// booked or cancelled event means the current snapshot may be stale, and a full reload is
// idempotent, so duplicates need no inbox.
type Consumer struct {
	reader  messageReader
	logger  *slog.Logger
	trigger func(context.Context)
	backoff time.Duration
}

type ConsumerConfig struct {
	Brokers string
	GroupID string
	Topics  []string
}

func NewConsumer(logger *slog.Logger, cfg ConsumerConfig, trigger func(context.Context)) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     kafkax.SplitBrokers(cfg.Brokers),
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	return newConsumer(reader, logger, trigger)
}

func newConsumer(reader messageReader, logger *slog.Logger, trigger func(context.Context)) *Consumer {
	return &Consumer{reader: reader, logger: logger, trigger: trigger, backoff: time.Second}
}

func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka read error", "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.backoff):
			}
			continue
		}

		ctxMsg := kafkax.ExtractTraceContext(ctx, msg)
		ctxSpan, span := otel.Tracer("kafka").Start(ctxMsg, "kafka.consume",
			trace.WithAttributes(
				attribute.String("messaging.system", "kafka"),
				attribute.String("messaging.destination", msg.Topic),
			),
		)
		meta := kafkax.ExtractEventMeta(msg)
		c.logger.Debug("booking event received", "event_id", meta.EventID, "event_type", meta.EventType)
		c.trigger(ctxSpan)
		span.End()
	}
}

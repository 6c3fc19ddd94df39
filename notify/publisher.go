package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"itinera/logging"
)

// Breaker policy for the notification channel.
const (
	breakerConsecutiveFailures = 3
	breakerOpenTimeout         = 30 * time.Second
)

// Publisher pushes events onto a Redis channel. After repeated failures the
// breaker opens and Send fails fast until the timeout elapses.
type Publisher struct {
	client  *redis.Client
	channel string
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewPublisher(client *redis.Client, channel string, logger *zap.Logger) *Publisher {
	p := &Publisher{client: client, channel: channel, logger: logging.OrNop(logger)}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notify-" + channel,
		MaxRequests: 1,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.Warn("notification breaker state changed",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return p
}

func (p *Publisher) Send(ctx context.Context, recipients []string, title, message string, metadata map[string]string) error {
	data, err := json.Marshal(Event{
		Recipients: recipients,
		Title:      title,
		Message:    message,
		Metadata:   metadata,
		SentAt:     time.Now().UTC(),
	})
	if err != nil {
		return errors.Wrap(err, "marshal notification")
	}

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.client.Publish(ctx, p.channel, data).Err()
	})
	if err != nil {
		return errors.Wrapf(err, "publish to %s", p.channel)
	}
	p.logger.Debug("notification published", zap.String("channel", p.channel), zap.Int("recipients", len(recipients)))
	return nil
}

// State exposes the breaker state for health reporting.
func (p *Publisher) State() gobreaker.State {
	return p.breaker.State()
}

package notify

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"itinera/logging"
)

// Worker relays events from the Redis channel to the local hub.
type Worker struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  *zap.Logger
	ready   chan struct{}
}

func NewWorker(client *redis.Client, channel string, hub *Hub, logger *zap.Logger) *Worker {
	return &Worker{client: client, channel: channel, hub: hub, logger: logging.OrNop(logger), ready: make(chan struct{})}
}

// Ready is closed once the subscription is confirmed.
func (w *Worker) Ready() <-chan struct{} { return w.ready }

// Run blocks until ctx is done or the subscription fails.
func (w *Worker) Run(ctx context.Context) error {
	sub := w.client.Subscribe(ctx, w.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return errors.Wrapf(err, "subscribe %s", w.channel)
	}
	close(w.ready)
	w.logger.Info("notification worker listening", zap.String("channel", w.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				w.logger.Warn("bad notification payload", zap.Error(err))
				continue
			}
			if err := fanOut(w.hub, ev); err != nil {
				w.logger.Warn("notification fan-out failed", zap.Error(err))
			}
		}
	}
}

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"low-altitude/uavops/internal/logging"
)

// ChannelForSession is the pub/sub channel a session's events are mirrored to.
func ChannelForSession(sessionID string) string {
	return fmt.Sprintf("uavops:session:%s:events", sessionID)
}

// RedisBridge mirrors every bus event to a Redis pub/sub channel so other
// service instances and dashboards can follow a session.
type RedisBridge struct {
	client  *redis.Client
	channel string
	timeout time.Duration
	sub     *Subscription
}

// AttachRedisBridge subscribes to all events on bus. Detach stops mirroring.
func AttachRedisBridge(bus *Bus, client *redis.Client, sessionID string) *RedisBridge {
	br := &RedisBridge{
		client:  client,
		channel: ChannelForSession(sessionID),
		timeout: 2 * time.Second,
	}
	br.sub = bus.Subscribe(All, br.forward)
	return br
}

func (br *RedisBridge) forward(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		logging.Warn("Redis bridge: failed to marshal event", "event", ev.Name, "error", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), br.timeout)
	defer cancel()

	if err := br.client.Publish(ctx, br.channel, data).Err(); err != nil {
		logging.Warn("Redis bridge: publish failed", "channel", br.channel, "event", ev.Name, "error", err.Error())
	}
}

func (br *RedisBridge) Detach() {
	br.sub.Unsubscribe()
}

// Follow subscribes to a session channel and decodes events until ctx is
// done. Payloads arrive as generic JSON values.
func Follow(ctx context.Context, client *redis.Client, sessionID string, fn func(Event)) error {
	ps := client.Subscribe(ctx, ChannelForSession(sessionID))
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logging.Warn("Redis bridge: dropping malformed event", "error", err.Error())
				continue
			}
			fn(ev)
		}
	}
}

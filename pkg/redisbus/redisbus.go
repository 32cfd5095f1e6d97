// Package redisbus fans match changes out to every server instance through redis pub/sub
package redisbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"trickmatch-server/pkg/match"
)

// DefaultChannel is used when no channel is configured
const DefaultChannel = "trickmatch"

const dialTimeout = time.Second * 5

// ErrMissingAddr is returned when no redis address is configured
var ErrMissingAddr = errors.New("missing redis address")

// Receiver is handed every change published by any instance
type Receiver interface {
	Notify(ctx context.Context, matchID string, summary *match.Summary) error
}

// Bus publishes and receives match changes over a single redis channel
type Bus struct {
	rdb     *redis.Client
	channel string
	logger  logrus.FieldLogger
}

type message struct {
	MatchID string         `json:"matchId"`
	Summary *match.Summary `json:"summary"`
}

// New connects to redis at addr
func New(ctx context.Context, addr, channel string, logger logrus.FieldLogger) (*Bus, error) {
	if addr == "" {
		return nil, ErrMissingAddr
	}

	if channel == "" {
		channel = DefaultChannel
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: dialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Bus{
		rdb:     rdb,
		channel: channel,
		logger:  logger.WithField("channel", channel),
	}, nil
}

// Notify publishes the change to every instance, including this one
func (b *Bus) Notify(ctx context.Context, matchID string, summary *match.Summary) error {
	raw, err := encode(matchID, summary)
	if err != nil {
		return err
	}

	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// Forward hands every published change to r until ctx is done
// ready, if not nil, is closed once the subscription is active.
func (b *Bus) Forward(ctx context.Context, r Receiver, ready chan<- struct{}) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	// ensures the subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}

	if ready != nil {
		close(ready)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}

			matchID, summary, err := decode(m.Payload)
			if err != nil {
				b.logger.WithError(err).Warn("bad redis payload")
				continue
			}

			if err := r.Notify(ctx, matchID, summary); err != nil {
				b.logger.WithError(err).WithField("matchID", matchID).Warn("could not forward change")
			}
		}
	}
}

// Close closes the redis client
func (b *Bus) Close() error {
	return b.rdb.Close()
}

func encode(matchID string, summary *match.Summary) ([]byte, error) {
	return json.Marshal(message{MatchID: matchID, Summary: summary})
}

func decode(payload string) (string, *match.Summary, error) {
	var msg message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return "", nil, err
	}

	if msg.MatchID == "" || msg.Summary == nil {
		return "", nil, errors.New("payload is missing the match")
	}

	return msg.MatchID, msg.Summary, nil
}

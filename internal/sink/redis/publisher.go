// internal/sink/redis/publisher.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tamzrod/simtemp/internal/sample"
)

// Message is the JSON document published per sample.
type Message struct {
	Device            string `json:"device"`
	TimestampNs       uint64 `json:"timestamp_ns"`
	TemperatureMC     int32  `json:"temp_mC"`
	Flags             uint32 `json:"flags"`
	ThresholdExceeded bool   `json:"threshold_exceeded"`
}

// client is the subset of go-redis the publisher needs.
type client interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
	Close() error
}

type Config struct {
	Addr     string
	Password string
	DB       int
	Channel  string
	Device   string
}

// Publisher fans samples out on a Redis pub/sub channel.
type Publisher struct {
	cli     client
	channel string
	device  string
}

// New connects to Redis and verifies the server answers PING.
func New(ctx context.Context, cfg Config) (*Publisher, error) {
	if cfg.Addr == "" {
		return nil, errors.New("sink redis: addr required")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("sink redis: ping %s: %w", cfg.Addr, err)
	}

	return newPublisher(rdb, cfg.Channel, cfg.Device), nil
}

func newPublisher(cli client, channel, device string) *Publisher {
	return &Publisher{cli: cli, channel: channel, device: device}
}

func (p *Publisher) Name() string { return "redis" }

func (p *Publisher) Close() error { return p.cli.Close() }

// Deliver publishes s as a Message.
func (p *Publisher) Deliver(ctx context.Context, s sample.Sample) error {
	payload, err := json.Marshal(Message{
		Device:            p.device,
		TimestampNs:       s.Timestamp,
		TemperatureMC:     s.Temperature,
		Flags:             uint32(s.Flags),
		ThresholdExceeded: s.Exceeded(),
	})
	if err != nil {
		return fmt.Errorf("sink redis: marshal: %w", err)
	}

	if err := p.cli.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("sink redis: publish %s: %w", p.channel, err)
	}
	return nil
}

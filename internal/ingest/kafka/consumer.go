// Package kafka mirrors order events from the platform broker into the same
// dispatch path as the socket. Some deployments publish every order event to
// a topic as well as pushing it over the socket; consuming the mirror keeps
// the feed populated when the socket backend is degraded. Disabled by
// default.
package kafka

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Sink receives normalized-ready wire events. The bridge implements it.
type Sink interface {
	Dispatch(ctx context.Context, wire string, payload []byte)
}

// Consumer wraps the franz-go client.
type Consumer struct {
	client *kgo.Client
	sink   Sink
}

// New creates a Consumer for the given brokers, group, and topics.
func New(brokers []string, groupID string, topics []string, sink Sink) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, err
	}
	return &Consumer{client: client, sink: sink}, nil
}

// Start begins polling and dispatching records. Blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	log.Info().Msg("kafka ingest started")

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			break
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			log.Error().Err(err).Str("topic", topic).Int32("partition", partition).Msg("kafka fetch error")
		})

		fetches.EachRecord(func(r *kgo.Record) {
			c.process(ctx, r)
		})

		if err := c.client.CommitUncommittedOffsets(ctx); err != nil {
			log.Error().Err(err).Msg("kafka commit error")
		}
	}

	c.client.Close()
	log.Info().Msg("kafka ingest stopped")
}

// process unwraps the record envelope and hands it to the sink. Records that
// are not order-event envelopes are skipped silently; the topic carries other
// traffic too.
func (c *Consumer) process(ctx context.Context, r *kgo.Record) {
	var env struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(r.Value, &env); err != nil || env.Event == "" {
		log.Debug().Str("topic", r.Topic).Msg("kafka: non-envelope record, skipping")
		return
	}
	c.sink.Dispatch(ctx, env.Event, env.Data)
}

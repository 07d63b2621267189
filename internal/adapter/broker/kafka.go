package broker

import (
	"github.com/segmentio/kafka-go"

	"github.com/polkiloo/orders/internal/config"
)

const (
	minFetchBytes = 1
	maxFetchBytes = 10e6
)

// NewReader builds a consumer-group reader for the payment results topic.
// CommitInterval is zero so CommitMessages returns only after the broker acknowledged the offset.
func NewReader(cfg *config.Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.PaymentResultsTopic,
		GroupID:        cfg.ConsumerGroup,
		MinBytes:       minFetchBytes,
		MaxBytes:       maxFetchBytes,
		CommitInterval: 0,
		StartOffset:    kafka.FirstOffset,
	})
}

// HeaderCarrier adapts kafka message headers to a propagation.TextMapCarrier.
type HeaderCarrier []kafka.Header

func (c *HeaderCarrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *HeaderCarrier) Set(key, value string) {
	for i, h := range *c {
		if h.Key == key {
			(*c)[i].Value = []byte(value)
			return
		}
	}
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *HeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(*c))
	for _, h := range *c {
		keys = append(keys, h.Key)
	}
	return keys
}

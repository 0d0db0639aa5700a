package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"blog-service/internal/post"

	kgo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kgo.Message) error
	Close() error
}

// Publisher writes post events as JSON, keyed by post id.
type Publisher struct {
	w       messageWriter
	timeout time.Duration
}

type Options struct {
	// Brokers is a comma separated host:port list.
	Brokers string
	Topic   string
	// Acks is "none", "one" or "all"; anything else means "one".
	Acks string
	// Async makes Publish return once the message is buffered. Delivery
	// failures are then only logged.
	Async bool
	Log   logrus.FieldLogger
}

func NewPublisher(o Options) (*Publisher, error) {
	addrs := splitBrokers(o.Brokers)
	if len(addrs) == 0 {
		return nil, fmt.Errorf("kafka: no brokers")
	}
	if o.Topic == "" {
		return nil, fmt.Errorf("kafka: empty topic")
	}
	if o.Log == nil {
		o.Log = logrus.StandardLogger()
	}
	w := &kgo.Writer{
		Addr:                   kgo.TCP(addrs...),
		Topic:                  o.Topic,
		Balancer:               &kgo.Hash{},
		RequiredAcks:           ParseAcks(o.Acks),
		Async:                  o.Async,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	if o.Async {
		w.Completion = completionLogger(o.Log)
	}
	return &Publisher{w: w, timeout: 5 * time.Second}, nil
}

func completionLogger(log logrus.FieldLogger) func([]kgo.Message, error) {
	return func(msgs []kgo.Message, err error) {
		if err == nil {
			return
		}
		for _, m := range msgs {
			log.WithError(err).WithFields(logrus.Fields{"key": string(m.Key), "topic": m.Topic}).Warn("kafka delivery failed")
		}
	}
}

func (p *Publisher) Publish(ctx context.Context, ev post.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("kafka: marshal %s: %w", ev.Type, err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.w.WriteMessages(ctx, kgo.Message{
		Key:   []byte(ev.Key()),
		Value: b,
		Time:  ev.At,
		Headers: []kgo.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
		},
	})
}

func (p *Publisher) Close() error { return p.w.Close() }

func ParseAcks(s string) kgo.RequiredAcks {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return kgo.RequireNone
	case "all":
		return kgo.RequireAll
	default:
		return kgo.RequireOne
	}
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

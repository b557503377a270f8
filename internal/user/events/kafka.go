package events

import (
	"context"
	"strconv"

	"github.com/segmentio/kafka-go"
)

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w kafkaWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}}
}

// Ключ сообщения это id пользователя, события одного пользователя попадают в одну партицию.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	data, err := e.Marshal()
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(e.UserID, 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
			{Key: "event_id", Value: []byte(e.ID.String())},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

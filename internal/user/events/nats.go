package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

type NATSPublisher struct {
	nc *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("rgarchitects-users"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{nc: nc}, nil
}

// Publish отправляет событие в subject, совпадающий с типом события.
func (p *NATSPublisher) Publish(_ context.Context, e Event) error {
	if p.nc == nil || !p.nc.IsConnected() {
		return nats.ErrConnectionClosed
	}
	data, err := e.Marshal()
	if err != nil {
		return err
	}
	return p.nc.Publish(string(e.Type), data)
}

func (p *NATSPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}

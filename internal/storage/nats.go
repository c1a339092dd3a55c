package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/nats-io/nats.go"
)

// Notice announces that a slot changed in some process. Receivers re-read the durable value.
type Notice struct {
	Node   string `json:"node"`
	Key    string `json:"key"`
	Origin string `json:"origin"`
}

// Notifier carries notices between processes sharing one database.
type Notifier interface {
	Publish(ctx context.Context, n Notice) error
	Subscribe(fn func(Notice)) (cancel func(), err error)
}

func encodeNotice(n Notice) ([]byte, error) {
	return json.Marshal(n)
}

func decodeNotice(data []byte) (Notice, error) {
	var n Notice
	if err := json.Unmarshal(data, &n); err != nil {
		return Notice{}, fmt.Errorf("failed to decode notice: %w", err)
	}
	if n.Node == "" || n.Key == "" {
		return Notice{}, fmt.Errorf("%w: notice missing node or key", shared.ErrInvalidInput)
	}
	return n, nil
}

// NATSNotifier implements [Notifier] on a NATS subject.
type NATSNotifier struct {
	nc      *nats.Conn
	subject string
	logger  *log.Logger
}

// NewNATSNotifier connects to the NATS server at addr.
func NewNATSNotifier(addr, subject string, logger *log.Logger) (*NATSNotifier, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	nc, err := nats.Connect(addr, nats.Name("reel"))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to broker: %v", shared.ErrServiceUnavailable, err)
	}
	logger.Info("connected to broker", "addr", addr, "subject", subject)

	return &NATSNotifier{nc: nc, subject: subject, logger: logger}, nil
}

// Publish sends n and flushes so the notice leaves before the caller continues.
func (p *NATSNotifier) Publish(ctx context.Context, n Notice) error {
	data, err := encodeNotice(n)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish notice: %w", err)
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("could not flush notice: %w", err)
	}
	return nil
}

// Subscribe delivers every decodable notice on the subject to fn until cancel is called.
func (p *NATSNotifier) Subscribe(fn func(Notice)) (func(), error) {
	ch := make(chan *nats.Msg, 64)
	sub, err := p.nc.ChanSubscribe(p.subject, ch)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", p.subject, err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case msg := <-ch:
				n, err := decodeNotice(msg.Data)
				if err != nil {
					p.logger.Warn("dropping malformed notice", "subject", p.subject, "error", err)
					continue
				}
				fn(n)
			}
		}
	}()

	return func() {
		if err := sub.Unsubscribe(); err != nil {
			p.logger.Error("failed to unsubscribe", "subject", p.subject, "error", err)
		}
		close(done)
	}, nil
}

// Close closes the connection.
func (p *NATSNotifier) Close() {
	p.nc.Close()
}

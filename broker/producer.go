package broker

import (
	"fmt"
	"time"

	"taskdesk/taskdesk/logger"

	"github.com/nats-io/nats.go"
)

// Producer publishes serialized events to a subject.
type Producer interface {
	Publish(subject string, data []byte) error
	Close()
}

type NatsProducer struct {
	conn *nats.Conn
}

// NewNatsProducer connects to the NATS server at url.
func NewNatsProducer(url string) (*NatsProducer, error) {
	conn, err := nats.Connect(url,
		nats.Name("taskdesk"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("NATS producer initialized", "url", url)
	return &NatsProducer{conn: conn}, nil
}

func (p *NatsProducer) Publish(subject string, data []byte) error {
	if p.conn == nil {
		return nats.ErrConnectionClosed
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return err
	}
	logger.Debug("Published event", "subject", subject, "bytes", len(data))
	return nil
}

func (p *NatsProducer) Close() {
	if p.conn != nil {
		if err := p.conn.Drain(); err != nil {
			p.conn.Close()
		}
	}
}

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"candidatevet/internal/bootstrap/config"
	"candidatevet/internal/bootstrap/logging"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
)

const connectTimeout = 5 * time.Second

type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

var _ ports.EventPublisher = (*NATSPublisher)(nil)

func Connect(ctx context.Context, cfg config.NATSConfig, clientName string) (*NATSPublisher, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	conn, err := nats.Connect(cfg.URL, nats.Name(clientName), nats.Timeout(connectTimeout))
	if err != nil {
		return nil, errs.Dependency(err, "connect nats")
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "infrastructure.messaging")),
		"nats connected",
		slog.String("url", conn.ConnectedUrlRedacted()),
	)
	return &NATSPublisher{conn: conn, prefix: cfg.SubjectPrefix}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if p == nil || p.conn == nil {
		return errors.New("nats publisher is closed")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return errs.Wrap(err, "encode event payload")
	}
	if err := p.conn.Publish(SubjectFor(p.prefix, subject), data); err != nil {
		return errs.Dependency(err, "publish event")
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return errs.Wrap(err, "drain nats connection")
	}
	return nil
}

func SubjectFor(prefix string, subject string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return subject
	}
	return prefix + "." + subject
}

// Noop drops events when no broker is configured.
type Noop struct{}

var _ ports.EventPublisher = Noop{}

func (Noop) Publish(context.Context, string, any) error {
	return nil
}

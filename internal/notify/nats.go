// Package notify publishes WAPI object changes to NATS.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/wapi/internal/constants"
	"github.com/fivetwenty-io/wapi/pkg/wapi"
	"github.com/nats-io/nats.go"
)

// Static errors for err113 compliance.
var (
	ErrURLRequired = errors.New("NATS URL is required")
	ErrNilConn     = errors.New("NATS connection is required")
)

var (
	_ wapi.Observer = (*Publisher)(nil)
	_ Conn          = (*nats.Conn)(nil)
)

// Conn is the part of *nats.Conn a Publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// Publisher is a wapi.Observer that publishes each change as JSON on
// "<prefix>.<type>.<action>", e.g. "wapi.changes.record_host.updated".
type Publisher struct {
	conn   Conn
	prefix string
	owned  bool
}

// Connect dials url and returns a publisher that closes the connection
// on Close.
func Connect(url, prefix string, opts ...nats.Option) (*Publisher, error) {
	if url == "" {
		return nil, ErrURLRequired
	}

	opts = append([]nats.Option{nats.Name(constants.DefaultUserAgent)}, opts...)

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	p, err := NewPublisher(conn, prefix)
	if err != nil {
		conn.Close()

		return nil, err
	}

	p.owned = true

	return p, nil
}

// NewPublisher publishes on an existing connection. Close leaves conn open.
func NewPublisher(conn Conn, prefix string) (*Publisher, error) {
	if conn == nil {
		return nil, ErrNilConn
	}

	if prefix == "" {
		prefix = constants.DefaultSubjectPrefix
	}

	return &Publisher{conn: conn, prefix: prefix}, nil
}

// ObjectChanged implements wapi.Observer.
func (p *Publisher) ObjectChanged(ctx context.Context, event wapi.ChangeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := Payload(event)
	if err != nil {
		return err
	}

	subject := Subject(p.prefix, event)

	err = p.conn.Publish(subject, payload)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}

	return nil
}

// Close drains the connection when the publisher owns it.
func (p *Publisher) Close() error {
	if !p.owned {
		return nil
	}

	err := p.conn.Drain()
	if err != nil {
		return fmt.Errorf("draining NATS connection: %w", err)
	}

	return nil
}

// Subject returns the subject event is published on. NATS treats "." as
// a token separator and rejects spaces, so both are replaced along with
// the ":" in record types.
func Subject(prefix string, event wapi.ChangeEvent) string {
	if prefix == "" {
		prefix = constants.DefaultSubjectPrefix
	}

	return strings.Join([]string{prefix, token(event.Type), token(string(event.Action))}, ".")
}

func token(s string) string {
	if s == "" {
		return "unknown"
	}

	return strings.NewReplacer(":", "_", ".", "_", " ", "_", "*", "_", ">", "_").Replace(s)
}

// Payload encodes event as the message body.
func Payload(event wapi.ChangeEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encoding change event: %w", err)
	}

	return data, nil
}

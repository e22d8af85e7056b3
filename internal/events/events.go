package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	TypeSitePublished   = "site.published"
	TypeSiteUnpublished = "site.unpublished"
	TypeDeployFailed    = "site.deploy_failed"
)

// SiteEvent is the lifecycle notification emitted after publish state
// changes. Downstream consumers (billing, notifications) key off Type.
type SiteEvent struct {
	Type        string    `json:"type"`
	UserID      string    `json:"userId"`
	PortfolioID string    `json:"portfolioId"`
	Subdomain   string    `json:"subdomain"`
	URL         string    `json:"url,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type Publisher interface {
	PublishSiteEvent(ctx context.Context, event SiteEvent) error
	Close() error
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishSiteEvent(context.Context, SiteEvent) error { return nil }
func (NopPublisher) Close() error                                      { return nil }

type AMQPConfig struct {
	URL      string
	Exchange string
}

// AMQPPublisher emits site events to a topic exchange, routing key
// equal to the event type.
type AMQPPublisher struct {
	exchange string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewAMQPPublisher(cfg AMQPConfig) (*AMQPPublisher, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("amqp url required")
	}
	exchange := strings.TrimSpace(cfg.Exchange)
	if exchange == "" {
		exchange = "foliohost.sites"
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}
	return &AMQPPublisher{exchange: exchange, conn: conn, channel: channel}, nil
}

func (p *AMQPPublisher) PublishSiteEvent(ctx context.Context, event SiteEvent) error {
	if event.Type == "" {
		return errors.New("event type required")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(ctx, p.exchange, event.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

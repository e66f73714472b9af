// Package publish delivers rendered advisories over AMQP.
package publish

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/cashplan/internal/log"
	"github.com/theirongolddev/cashplan/internal/model"
)

const publishTimeout = 5 * time.Second

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends advice messages to a direct exchange.
type Publisher struct {
	conn       *amqp.Connection
	ch         channel
	exchange   string
	routingKey string
	log        zerolog.Logger
}

// Dial connects to the broker at rawURL and declares the exchange.
func Dial(rawURL, exchange, routingKey string, logger zerolog.Logger) (*Publisher, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}
	conn, err := amqp.Dial(rawURL)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := newPublisher(ch, exchange, routingKey, logger)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange, routingKey string, logger zerolog.Logger) (*Publisher, error) {
	if exchange == "" || routingKey == "" {
		return nil, fmt.Errorf("%w: publish exchange and routing key are required", model.ErrInvalidConfiguration)
	}
	err := ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
		log:        log.WithComponent(logger, log.ComponentPublish),
	}, nil
}

// PublishAdvice sends one advisory as a persistent JSON message.
func (p *Publisher) PublishAdvice(ctx context.Context, msg AdviceMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx,
		p.exchange,   // exchange
		p.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.RunID,
			Timestamp:    msg.GeneratedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	p.log.Info().
		Str(log.FieldOperation, log.OpPublish).
		Str(log.FieldRunID, msg.RunID).
		Str(log.FieldExchange, p.exchange).
		Int(log.FieldSections, len(msg.Sections)).
		Msg("published advice")
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

// ValidateURL accepts amqp:// and amqps:// URLs.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: AMQP URL is not set", model.ErrInvalidConfiguration)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: AMQP URL: %v", model.ErrInvalidConfiguration, err)
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return fmt.Errorf("%w: AMQP URL scheme %q must be amqp or amqps", model.ErrInvalidConfiguration, u.Scheme)
	}
	return nil
}

// RedactURL hides the password in an AMQP URL for display.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}
	return u.Redacted()
}

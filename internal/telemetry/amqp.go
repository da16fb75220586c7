package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/streadway/amqp"

	"nestmind/apps/gateway/internal/domain"
)

const DefaultExchange = "nestmind-events"

// AMQPSink publishes events as JSON to a durable direct exchange, routed by
// event name. The connection is re-established on the next publish after a drop.
type AMQPSink struct {
	mu       sync.Mutex
	amqpURL  string
	exchange string
	conn     *amqp.Connection
	channel  *amqp.Channel
}

func NewAMQPSink(amqpURL, exchange string) (*AMQPSink, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	s := &AMQPSink{amqpURL: amqpURL, exchange: exchange}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.connectLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *AMQPSink) Track(_ context.Context, evt domain.Event) {
	body, err := json.Marshal(evt)
	if err != nil {
		log.WithError(err).Warn("failed to encode telemetry event")
		return
	}
	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}
	if err := s.publish(evt.Name, publishing); err != nil {
		log.WithError(err).WithField("exchange", s.exchange).Warn("failed to publish telemetry event")
	}
}

func (s *AMQPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.channel != nil {
		err = s.channel.Close()
	}
	if s.conn != nil {
		if connErr := s.conn.Close(); connErr != nil && err == nil {
			err = connErr
		}
	}
	s.channel = nil
	s.conn = nil
	return err
}

func (s *AMQPSink) connectLocked() error {
	conn, err := amqp.Dial(s.amqpURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(s.exchange, "direct", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	s.conn = conn
	s.channel = ch
	return nil
}

func (s *AMQPSink) closeLocked() {
	if s.channel != nil {
		_ = s.channel.Close()
		s.channel = nil
	}
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

func (s *AMQPSink) publish(routingKey string, publishing amqp.Publishing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil || s.conn.IsClosed() || s.channel == nil {
		s.closeLocked()
		if err := s.connectLocked(); err != nil {
			return err
		}
	}

	err := s.channel.Publish(s.exchange, routingKey, false, false, publishing)
	if err != nil && isConnClosedErr(err) {
		s.closeLocked()
		if connErr := s.connectLocked(); connErr != nil {
			return fmt.Errorf("failed to publish message: %w (reconnect failed: %v)", err, connErr)
		}
		err = s.channel.Publish(s.exchange, routingKey, false, false, publishing)
	}
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func isConnClosedErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp.ErrClosed) {
		return true
	}
	return strings.Contains(err.Error(), "channel/connection is not open")
}

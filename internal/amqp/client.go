package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"familyassets/internal/log"
	"familyassets/internal/store"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	maxBackoff     = 30 * time.Second
	publishRetries = 3
	publishTimeout = 5 * time.Second
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type Client struct {
	url          string
	exchangeName string
	queueName    string
	// origin identifies this process in published messages and names its
	// private consumer queue.
	origin     string
	retryDelay func(attempt int) time.Duration
	logger     *log.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time
}

// NewClient connects and declares the topology. With a non-empty origin
// the client also gets its own queue bound to the change routing key, so
// every running instance sees every change.
func NewClient(url, exchangeName, queueName, origin string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Discard()
	}
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		origin:       origin,
		retryDelay:   exponentialBackoff,
		logger:       logger.WithComponent(log.ComponentAMQP),
	}

	if err := client.connect(); err != nil {
		return nil, err
	}

	return client, nil
}

// connect dials and declares the topology. Callers hold c.mu or own c
// exclusively.
func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.conn = conn
	c.channel = channel

	if err := c.setup(); err != nil {
		c.closeLocked()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	return nil
}

func (c *Client) setup() error {
	// Declare exchange
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// Declare queue
	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Bind queue to exchange
	err = c.channel.QueueBind(
		c.queueName,    // queue name
		c.queueName,    // routing key (same as queue name for direct exchange)
		c.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	if c.origin == "" {
		return nil
	}

	// Private queue, dropped with the connection and redeclared on reconnect.
	_, err = c.channel.QueueDeclare(c.consumeQueue(), false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("declare instance queue: %w", err)
	}
	if err := c.channel.QueueBind(c.consumeQueue(), c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind instance queue: %w", err)
	}
	return nil
}

// consumeQueue is the queue ConsumeAssetChanges reads from.
func (c *Client) consumeQueue() string {
	if c.origin == "" {
		return c.queueName
	}
	return c.queueName + "." + c.origin
}

// ensureChannel reconnects when the connection has dropped.
func (c *Client) ensureChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}
	c.closeLocked()
	if err := c.connect(); err != nil {
		return nil, err
	}
	c.logger.Info("Reconnected to AMQP broker", "exchange", c.exchangeName)
	return c.channel, nil
}

// AssetChanged publishes the event. It satisfies store.Notifier.
func (c *Client) AssetChanged(ctx context.Context, ev store.Event, revision int64) error {
	msg := NewAssetChangedMessage(string(ev.Kind), ev.Asset.ID, revision)
	msg.Origin = c.origin
	return c.PublishAssetChanged(ctx, msg)
}

// PublishAssetChanged publishes msg, retrying connection failures with
// exponential backoff while the circuit is closed.
func (c *Client) PublishAssetChanged(ctx context.Context, msg *AssetChangedMessage) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: %w", msg.ID, ErrCircuitOpen)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < publishRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(exponentialBackoff(attempt - 1)):
			}
		}

		lastErr = c.publish(ctx, body)
		if lastErr == nil {
			c.recordSuccess()
			c.logger.DebugContext(ctx, "Published asset change",
				log.FieldEvent, msg.Event,
				log.FieldAssetID, msg.ID,
				log.FieldRevision, msg.Revision,
				"exchange", c.exchangeName)
			return nil
		}

		c.recordFailure()
		if !isConnectionError(lastErr) || c.isCircuitOpen() {
			break
		}
		c.logger.WarnContext(ctx, "Publish failed, retrying",
			"attempt", attempt+1,
			log.FieldError, lastErr.Error())
	}

	return fmt.Errorf("publish message: %w", lastErr)
}

func (c *Client) publish(ctx context.Context, body []byte) error {
	channel, err := c.ensureChannel()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// ConsumeAssetChanges delivers messages to handler until ctx is done.
// Malformed messages are dropped; handler errors requeue the delivery.
func (c *Client) ConsumeAssetChanges(ctx context.Context, handler func(context.Context, *AssetChangedMessage) error) error {
	channel, err := c.ensureChannel()
	if err != nil {
		return err
	}

	queue := c.consumeQueue()
	msgs, err := channel.Consume(
		queue, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming asset changes", "queue", queue)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			msg, err := AssetChangedMessageFromJSON(delivery.Body)
			if err != nil {
				c.logger.ErrorContext(ctx, "Failed to unmarshal message", log.FieldError, err.Error())
				delivery.Nack(false, false) // reject and don't requeue
				continue
			}

			if err := handler(ctx, msg); err != nil {
				c.logger.ErrorContext(ctx, "Failed to handle message",
					log.FieldError, err.Error(),
					log.FieldAssetID, msg.ID,
					log.FieldRevision, msg.Revision)
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
			c.logger.DebugContext(ctx, "Processed asset change",
				log.FieldEvent, msg.Event,
				log.FieldAssetID, msg.ID,
				log.FieldRevision, msg.Revision)
		}
	}
}

// ConsumeWithRetry keeps a consumer running until ctx is done. When the
// broker drops it the client reconnects after an exponential backoff; the
// attempt counter resets once a consumer has stayed up for maxBackoff.
func (c *Client) ConsumeWithRetry(ctx context.Context, handler func(context.Context, *AssetChangedMessage) error) error {
	delay := c.retryDelay
	if delay == nil {
		delay = exponentialBackoff
	}

	attempt := 0
	for {
		started := time.Now()
		err := c.ConsumeAssetChanges(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Since(started) > maxBackoff {
			attempt = 0
		}

		wait := delay(attempt)
		attempt++
		reason := "consumer returned"
		if err != nil {
			reason = err.Error()
		}
		c.logger.WarnContext(ctx, "Asset change consumer stopped, retrying",
			log.FieldError, reason,
			"attempt", attempt,
			"retry_in", wait.String(),
			log.FieldOperation, log.OpConsume)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()

	failures := atomic.AddInt64(&c.failureCount, 1)
	if failures >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		if atomic.SwapInt32(&c.state, StateOpen) != StateOpen {
			c.logger.Warn("AMQP circuit breaker opened", "failures", failures)
		}
	}
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << uint(attempt)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "channel/connection is not open"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) closeLocked() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return nil
}

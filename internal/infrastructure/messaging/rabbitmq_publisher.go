// Package messaging publica los lotes confirmados del ledger en RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/jhoicas/almoxtrack-api/internal/application/inventory"
)

var _ inventory.EventPublisher = (*RabbitPublisher)(nil)

// MovementsEvent cuerpo del mensaje movement.generated.
type MovementsEvent struct {
	ID          string               `json:"id"`
	RequestID   string               `json:"request_id"`
	Type        string               `json:"type"`
	Date        time.Time            `json:"date"`
	Responsible string               `json:"responsible"`
	Products    []ProductPerMovement `json:"products"`
}

// ProductPerMovement una línea del lote.
type ProductPerMovement struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	Count        int       `json:"count"`
	MovementID   string    `json:"movement_id"`
	MovementType string    `json:"movement_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// channel subconjunto de *amqp.Channel usado para publicar.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publica en un exchange topic. Reabre el canal una vez si la publicación falla.
type RabbitPublisher struct {
	mu         sync.Mutex
	dial       func() (channel, func() error, error)
	ch         channel
	closeConn  func() error
	exchange   string
	routingKey string
}

// NewRabbitPublisher conecta al broker y declara el exchange (topic, durable).
func NewRabbitPublisher(url, exchange, routingKey string) (*RabbitPublisher, error) {
	dial := func() (channel, func() error, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, nil, fmt.Errorf("rabbitmq: dial: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("rabbitmq: canal: %w", err)
		}
		return ch, conn.Close, nil
	}
	return newRabbitPublisher(dial, exchange, routingKey)
}

func newRabbitPublisher(dial func() (channel, func() error, error), exchange, routingKey string) (*RabbitPublisher, error) {
	p := &RabbitPublisher{dial: dial, exchange: exchange, routingKey: routingKey}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect se llama con mu tomado (o antes de publicar el publisher).
func (p *RabbitPublisher) connect() error {
	ch, closeConn, err := p.dial()
	if err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = closeConn()
		return fmt.Errorf("rabbitmq: declarar exchange %s: %w", p.exchange, err)
	}
	p.ch, p.closeConn = ch, closeConn
	return nil
}

// PublishBatch serializa el lote y lo publica con entrega persistente.
func (p *RabbitPublisher) PublishBatch(ctx context.Context, batch *inventory.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(NewMovementsEvent(batch))
	if err != nil {
		return fmt.Errorf("rabbitmq: serializar evento: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    batch.TransactionID,
		Timestamp:    time.Now(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		if err = p.ch.Publish(p.exchange, p.routingKey, false, false, msg); err == nil {
			return nil
		}
		p.closeLocked()
	}
	if cerr := p.connect(); cerr != nil {
		if err != nil {
			return fmt.Errorf("rabbitmq: publicar: %v; reconectar: %w", err, cerr)
		}
		return cerr
	}
	if err := p.ch.Publish(p.exchange, p.routingKey, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq: publicar: %w", err)
	}
	return nil
}

// Close cierra canal y conexión.
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}

func (p *RabbitPublisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.closeConn != nil {
		_ = p.closeConn()
		p.closeConn = nil
	}
}

// NewMovementsEvent arma el evento a partir del lote confirmado.
func NewMovementsEvent(b *inventory.Batch) MovementsEvent {
	ev := MovementsEvent{
		ID:          b.TransactionID,
		RequestID:   b.TransactionID,
		Type:        b.Type,
		Date:        b.Date,
		Responsible: b.Responsible,
		Products:    make([]ProductPerMovement, 0, len(b.Movements)),
	}
	for _, m := range b.Movements {
		ev.Products = append(ev.Products, ProductPerMovement{
			ID:           m.ID,
			ProductID:    m.ProductID,
			Count:        m.Quantity,
			MovementID:   m.ID,
			MovementType: m.Type,
			CreatedAt:    m.CreatedAt,
		})
	}
	return ev
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"jsmc-rsvp/internal/logger"
	"jsmc-rsvp/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EventRSVPSubmitted = "rsvp.submitted"
	EventRSVPUpdated   = "rsvp.updated"
	EventRSVPCleared   = "rsvp.cleared"
)

// Publisher delivers one outbox message to the broker.
type Publisher interface {
	Publish(ctx context.Context, msg model.OutboxMessage) error
}

// Outbox stores ledger events in the same transaction as the change, and
// relays them to a Publisher later.
type Outbox struct {
	db        *gorm.DB
	batchSize int
	relaying  sync.Mutex
}

func NewOutbox(db *gorm.DB) *Outbox { return &Outbox{db: db, batchSize: 100} }

// Enqueue is a no-op on a nil Outbox.
func (o *Outbox) Enqueue(tx *gorm.DB, typ, key string, payload any) error {
	if o == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", typ, err)
	}
	msg := model.OutboxMessage{
		Type:    typ,
		Key:     key,
		Payload: datatypes.JSON(data),
		Status:  model.OutboxReady,
	}
	if err := tx.Create(&msg).Error; err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

// Relay publishes ready messages in id order and stops at the first
// failure, so a message is never published before an older one. Only one
// Relay runs at a time; an overlapping call returns 0 without publishing.
func (o *Outbox) Relay(ctx context.Context, pub Publisher) (int, error) {
	if !o.relaying.TryLock() {
		logger.Debug("outbox.relay_busy")
		return 0, nil
	}
	defer o.relaying.Unlock()

	var msgs []model.OutboxMessage
	err := o.db.WithContext(ctx).Where("status = ?", model.OutboxReady).
		Order("id").Limit(o.batchSize).Find(&msgs).Error
	if err != nil {
		return 0, fmt.Errorf("query outbox: %w", err)
	}

	for i := range msgs {
		m := msgs[i]
		if err := pub.Publish(ctx, m); err != nil {
			logger.Warn("outbox.publish_failed", "id", m.ID, "type", m.Type, "err", err)
			return i, fmt.Errorf("publish message %d: %w", m.ID, err)
		}
		now := time.Now()
		err := o.db.WithContext(ctx).Model(&model.OutboxMessage{}).Where("id = ?", m.ID).
			Updates(map[string]any{"status": model.OutboxPublished, "published_at": now}).Error
		if err != nil {
			return i, fmt.Errorf("mark message %d published: %w", m.ID, err)
		}
	}
	if len(msgs) > 0 {
		logger.Info("outbox.relayed", "count", len(msgs))
	}
	return len(msgs), nil
}

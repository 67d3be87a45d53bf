// Package notify holds transient operation-outcome notifications in memory.
// The storefront polls them and renders dismissible toasts; nothing here is
// persisted across restarts.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kamau/sugarbloom-api/internal/domain"
)

const maxBuffered = 100

// Center is a bounded in-memory notification buffer. When full, the oldest
// entry is dropped.
type Center struct {
	mu     sync.Mutex
	items  []domain.Notification
	logger *zap.Logger
}

// NewCenter creates a notification center.
func NewCenter(logger *zap.Logger) *Center {
	return &Center{logger: logger}
}

// Publish appends a notification, stamping its id and timestamp.
func (c *Center) Publish(n domain.Notification) {
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now().UTC()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append(c.items, n)
	if len(c.items) > maxBuffered {
		c.items = c.items[len(c.items)-maxBuffered:]
	}

	c.logger.Debug("notification published",
		zap.String("level", n.Level),
		zap.String("title", n.Title),
	)
}

// Success publishes a success-level notification.
func (c *Center) Success(title, message string) {
	c.Publish(domain.Notification{Level: domain.NotifySuccess, Title: title, Message: message})
}

// Error publishes an error-level notification.
func (c *Center) Error(title, message string) {
	c.Publish(domain.Notification{Level: domain.NotifyError, Title: title, Message: message})
}

// List returns buffered notifications, newest first.
func (c *Center) List() []domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Notification, len(c.items))
	for i, n := range c.items {
		out[len(c.items)-1-i] = n
	}
	return out
}

// Dismiss removes one notification by id. Unknown ids are a no-op.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

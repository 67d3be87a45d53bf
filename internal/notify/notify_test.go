package notify_test

import (
	"testing"

	"go.uber.org/zap"

	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/notify"
)

func TestCenter_PublishAndList(t *testing.T) {
	c := notify.NewCenter(zap.NewNop())

	c.Success("Order Submitted!", "We'll contact you soon")
	c.Error("Sign In Failed", "Invalid login credentials")

	items := c.List()
	if len(items) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(items))
	}

	// Newest first
	if items[0].Level != domain.NotifyError {
		t.Errorf("expected newest first, got level %s", items[0].Level)
	}
	if items[0].ID == "" {
		t.Error("expected generated notification id")
	}
	if items[0].CreatedAt.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestCenter_Dismiss(t *testing.T) {
	c := notify.NewCenter(zap.NewNop())

	c.Success("Welcome back!", "")
	id := c.List()[0].ID

	c.Dismiss(id)
	if len(c.List()) != 0 {
		t.Fatal("expected notification to be dismissed")
	}

	// Unknown id is a no-op
	c.Dismiss("does-not-exist")
}

func TestCenter_BoundedBuffer(t *testing.T) {
	c := notify.NewCenter(zap.NewNop())

	for i := 0; i < 150; i++ {
		c.Success("title", "msg")
	}

	if got := len(c.List()); got != 100 {
		t.Errorf("expected buffer capped at 100, got %d", got)
	}
}

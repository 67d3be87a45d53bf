package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kamau/sugarbloom-api/internal/domain"
)

// ============================================================
// FAQ
// ============================================================

func TestFAQService_Items(t *testing.T) {
	svc := NewFAQService()

	items := svc.Items()
	if len(items) != 10 {
		t.Fatalf("expected 10 FAQ entries, got %d", len(items))
	}
	for i, item := range items {
		if item.Question == "" || item.Answer == "" {
			t.Errorf("entry %d has empty content", i)
		}
	}
	if len(svc.Open()) != 0 {
		t.Error("all entries start collapsed")
	}
}

func TestFAQService_Toggle(t *testing.T) {
	svc := NewFAQService()

	open, err := svc.Toggle(2)
	if err != nil || !open {
		t.Fatalf("first toggle should open, got open=%v err=%v", open, err)
	}
	if open, _ = svc.Toggle(5); !open {
		t.Fatal("independent entries open independently")
	}
	if got := svc.Open(); !reflect.DeepEqual(got, []int{2, 5}) {
		t.Errorf("expected entries 2 and 5 open, got %v", got)
	}

	open, err = svc.Toggle(2)
	if err != nil || open {
		t.Fatalf("second toggle should close, got open=%v err=%v", open, err)
	}
	if got := svc.Open(); !reflect.DeepEqual(got, []int{5}) {
		t.Errorf("expected only entry 5 open, got %v", got)
	}
}

func TestFAQService_ToggleOutOfRange(t *testing.T) {
	svc := NewFAQService()

	for _, index := range []int{-1, len(svc.Items())} {
		_, err := svc.Toggle(index)
		var nf *domain.ErrNotFound
		if !errors.As(err, &nf) {
			t.Errorf("index %d: expected not-found error, got %v", index, err)
		}
	}
}

// ============================================================
// Contact
// ============================================================

func TestContactService_WhatsAppLink(t *testing.T) {
	svc := NewContactService(&mockNotifier{}, "254712345678", zap.NewNop())

	link := svc.WhatsAppLink()
	if !strings.HasPrefix(link, "https://wa.me/254712345678?text=") {
		t.Fatalf("unexpected link %q", link)
	}
	if strings.ContainsAny(strings.TrimPrefix(link, "https://wa.me/254712345678?text="), " !'") {
		t.Errorf("greeting not escaped in %q", link)
	}
}

func TestContactService_Info(t *testing.T) {
	svc := NewContactService(&mockNotifier{}, "254712345678", zap.NewNop())

	info := svc.Info()
	if info.Address == "" || info.Phone == "" || info.Email == "" || info.Hours == "" {
		t.Errorf("incomplete contact block: %+v", info)
	}
}

func TestContactService_SubmitMessage(t *testing.T) {
	notifier := &mockNotifier{}
	svc := NewContactService(notifier, "254712345678", zap.NewNop())

	err := svc.SubmitMessage(context.Background(), &domain.ContactRequest{
		Name:    "Wanjiru Kamau",
		Email:   "wanjiru@example.com",
		Message: "Do you deliver to Karen?",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, ok := notifier.last()
	if !ok || n.Title != "Message Sent!" {
		t.Errorf("expected acknowledgement notification, got %+v", n)
	}
}

func TestContactService_SubmitMessageValidation(t *testing.T) {
	svc := NewContactService(&mockNotifier{}, "254712345678", zap.NewNop())

	err := svc.SubmitMessage(context.Background(), &domain.ContactRequest{
		Name:  "Wanjiru Kamau",
		Email: "not-an-email",
	})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

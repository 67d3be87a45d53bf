package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/kamau/sugarbloom-api/internal/domain"
	"github.com/kamau/sugarbloom-api/internal/port"
)

var contactTracer = otel.Tracer("contact")

const whatsAppGreeting = "Hi! I'm interested in ordering a custom cake. Can you help me?"

// ContactService serves the contact page: static bakery details, the
// WhatsApp deep link, and message submission. Submissions are acknowledged
// but intentionally not persisted; the bakery reads them from email.
type ContactService struct {
	notifier      port.Notifier
	validate      *validator.Validate
	whatsAppPhone string
	logger        *zap.Logger
}

// NewContactService creates the contact service.
func NewContactService(notifier port.Notifier, whatsAppPhone string, logger *zap.Logger) *ContactService {
	return &ContactService{
		notifier:      notifier,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		whatsAppPhone: whatsAppPhone,
		logger:        logger,
	}
}

// Info returns the static contact block.
func (s *ContactService) Info() domain.ContactInfo {
	return domain.ContactInfo{
		Address: "123 Sweet Street, Baker's District, City, State 12345",
		Phone:   "+1 (234) 567-890",
		Email:   "hello@sweetdreamsbakery.com",
		Hours:   "Mon-Fri: 8AM-6PM, Sat: 9AM-5PM, Sun: 10AM-4PM",
	}
}

// WhatsAppLink builds the wa.me deep link with the standard greeting.
func (s *ContactService) WhatsAppLink() string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", s.whatsAppPhone, url.QueryEscape(whatsAppGreeting))
}

// SubmitMessage validates a contact form submission and acknowledges it.
func (s *ContactService) SubmitMessage(ctx context.Context, req *domain.ContactRequest) error {
	_, span := contactTracer.Start(ctx, "ContactService.SubmitMessage")
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if ok := errors.As(err, &verrs); ok && len(verrs) > 0 {
			return &domain.ErrValidation{
				Field:   verrs[0].Field(),
				Message: "Please fill in all required fields.",
			}
		}
		return &domain.ErrValidation{Field: "request", Message: err.Error()}
	}

	s.logger.Info("contact message received",
		zap.String("name", req.Name),
		zap.String("subject", req.Subject),
	)
	s.notifier.Success("Message Sent!", "We'll get back to you within 24 hours.")
	return nil
}

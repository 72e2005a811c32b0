package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/ports"
	"github.com/samirrijal/ecobin/internal/pkg/apperr"
	"github.com/samirrijal/ecobin/internal/pkg/metrics"
	"github.com/samirrijal/ecobin/internal/pkg/phone"
	"github.com/samirrijal/ecobin/internal/pkg/validator"
)

// Confirmation texts shown to the submitter.
const (
	BinReceiptTitle       = "Bin Submitted Successfully!"
	BinReceiptMessage     = "Your e-waste bin location has been submitted for review. We will verify and add it to the map soon."
	ContactReceiptTitle   = "Message Sent!"
	ContactReceiptMessage = "Thank you for contacting us. We will get back to you within 24-48 hours."
)

// SubmissionService accepts the public "add a bin" and contact forms.
type SubmissionService struct {
	repo      ports.SubmissionRepository
	publisher ports.EventPublisher
	notifier  ports.Notifier
	validate  *validator.Validator
	delay     time.Duration
	now       func() time.Time
}

// NewSubmissionService creates a new SubmissionService. publisher and
// notifier may be nil. delay is a fixed wait applied before persisting.
func NewSubmissionService(
	repo ports.SubmissionRepository,
	publisher ports.EventPublisher,
	notifier ports.Notifier,
	delay time.Duration,
) *SubmissionService {
	v := validator.New()
	v.MustRegister("phone", func(fl govalidator.FieldLevel) bool {
		return phone.Valid(fl.Field().String(), phone.DefaultRegion)
	})
	v.MustRegister("category_label", func(fl govalidator.FieldLevel) bool {
		return domain.IsCategoryLabel(fl.Field().String())
	})

	return &SubmissionService{
		repo:      repo,
		publisher: publisher,
		notifier:  notifier,
		validate:  v,
		delay:     delay,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SubmitBin validates and stores a proposed collection point, then
// announces it for review.
func (s *SubmissionService) SubmitBin(ctx context.Context, sub domain.BinSubmission) (*domain.SubmissionReceipt, error) {
	ctx, span := tracer.Start(ctx, "SubmissionService.SubmitBin")
	defer span.End()

	kind := string(domain.SubmissionKindBin)
	sub = trimBinSubmission(sub)
	if err := s.validate.Struct(sub); err != nil {
		metrics.Submissions.WithLabelValues(kind, "invalid").Inc()
		return nil, apperr.Validation("invalid bin submission").
			WithDetails(validator.FieldErrors(err)).WithOp("SubmitBin")
	}
	sub.Contact = phone.NormalizeE164(sub.Contact, phone.DefaultRegion)

	if err := s.wait(ctx); err != nil {
		metrics.Submissions.WithLabelValues(kind, "cancelled").Inc()
		return nil, err
	}

	now := s.now()
	stored := &domain.StoredBinSubmission{
		ID:         uuid.NewString(),
		Status:     domain.SubmissionPendingReview,
		Submission: sub,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateBinSubmission(ctx, stored); err != nil {
		metrics.Submissions.WithLabelValues(kind, "error").Inc()
		return nil, apperr.Internal("store bin submission", err).WithOp("SubmitBin")
	}

	if s.publisher != nil {
		event := &domain.BinSubmittedEvent{SubmissionID: stored.ID, Submission: sub, SubmittedAt: now}
		if err := s.publisher.PublishBinSubmitted(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish bin submission failed", "submission_id", stored.ID, "error", err)
		}
	}

	metrics.Submissions.WithLabelValues(kind, "accepted").Inc()
	return &domain.SubmissionReceipt{
		ID:         stored.ID,
		Kind:       domain.SubmissionKindBin,
		Status:     stored.Status,
		Title:      BinReceiptTitle,
		Message:    BinReceiptMessage,
		ReceivedAt: now,
	}, nil
}

// SubmitContact validates and stores a contact message and forwards it to
// the moderators.
func (s *SubmissionService) SubmitContact(ctx context.Context, msg domain.ContactMessage) (*domain.SubmissionReceipt, error) {
	ctx, span := tracer.Start(ctx, "SubmissionService.SubmitContact")
	defer span.End()

	kind := string(domain.SubmissionKindContact)
	msg = trimContactMessage(msg)
	if err := s.validate.Struct(msg); err != nil {
		metrics.Submissions.WithLabelValues(kind, "invalid").Inc()
		return nil, apperr.Validation("invalid contact message").
			WithDetails(validator.FieldErrors(err)).WithOp("SubmitContact")
	}
	if msg.Phone != "" {
		msg.Phone = phone.NormalizeE164(msg.Phone, phone.DefaultRegion)
	}

	if err := s.wait(ctx); err != nil {
		metrics.Submissions.WithLabelValues(kind, "cancelled").Inc()
		return nil, err
	}

	stored := &domain.StoredContactMessage{
		ID:        uuid.NewString(),
		Status:    domain.SubmissionReceived,
		Message:   msg,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateContactMessage(ctx, stored); err != nil {
		metrics.Submissions.WithLabelValues(kind, "error").Inc()
		return nil, apperr.Internal("store contact message", err).WithOp("SubmitContact")
	}

	if s.notifier != nil {
		subject := "Contact: " + msg.Subject
		body := fmt.Sprintf("From: %s <%s>\nPhone: %s\n\n%s", msg.Name, msg.Email, msg.Phone, msg.Message)
		if err := s.notifier.NotifyModerators(ctx, subject, body); err != nil {
			slog.WarnContext(ctx, "notify moderators failed", "message_id", stored.ID, "error", err)
		}
	}

	metrics.Submissions.WithLabelValues(kind, "accepted").Inc()
	return &domain.SubmissionReceipt{
		ID:         stored.ID,
		Kind:       domain.SubmissionKindContact,
		Status:     stored.Status,
		Title:      ContactReceiptTitle,
		Message:    ContactReceiptMessage,
		ReceivedAt: stored.CreatedAt,
	}, nil
}

// wait applies the configured delay. Cancelling ctx aborts the submission
// before anything is stored.
func (s *SubmissionService) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func trimBinSubmission(b domain.BinSubmission) domain.BinSubmission {
	b.Name = strings.TrimSpace(b.Name)
	b.Address = strings.TrimSpace(b.Address)
	b.Area = strings.TrimSpace(b.Area)
	b.City = strings.TrimSpace(b.City)
	b.Pincode = strings.TrimSpace(b.Pincode)
	b.Contact = strings.TrimSpace(b.Contact)
	b.OperatingHours = strings.TrimSpace(b.OperatingHours)
	b.AdditionalInfo = strings.TrimSpace(b.AdditionalInfo)
	if b.AcceptedItems == nil {
		b.AcceptedItems = []string{}
	}
	return b
}

func trimContactMessage(m domain.ContactMessage) domain.ContactMessage {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Phone = strings.TrimSpace(m.Phone)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
	return m
}

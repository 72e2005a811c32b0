package usecases_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/samirrijal/ecobin/internal/adapters/memory"
	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/usecases"
	"github.com/samirrijal/ecobin/internal/pkg/apperr"
)

// --- Mocks ---

type mockPublisher struct {
	mu     sync.Mutex
	events []*domain.BinSubmittedEvent
	err    error
}

func (m *mockPublisher) PublishBinSubmitted(ctx context.Context, e *domain.BinSubmittedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return m.err
}

func (m *mockPublisher) PublishCatalogChanged(ctx context.Context) error { return nil }

type mockNotifier struct {
	subjects []string
	err      error
}

func (m *mockNotifier) NotifyModerators(ctx context.Context, subject, body string) error {
	m.subjects = append(m.subjects, subject)
	return m.err
}

type failingSubmissionRepo struct{ *memory.SubmissionStore }

func (failingSubmissionRepo) CreateBinSubmission(ctx context.Context, sub *domain.StoredBinSubmission) error {
	return errors.New("disk full")
}

func validBin() domain.BinSubmission {
	return domain.BinSubmission{
		Name:           "Koramangala Drop Point",
		Address:        "12 80 Feet Road",
		Area:           "Koramangala",
		City:           "Bangalore",
		Pincode:        "560034",
		Contact:        "+91 98765 43210",
		OperatingHours: "Mon-Sat: 9AM - 6PM",
		AcceptedItems:  []string{"Mobile Phones", "Batteries"},
	}
}

// --- Tests ---

func TestSubmitBin_Success(t *testing.T) {
	store := memory.NewSubmissionStore()
	pub := &mockPublisher{}
	svc := usecases.NewSubmissionService(store, pub, nil, 0)

	receipt, err := svc.SubmitBin(context.Background(), validBin())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.Status != domain.SubmissionPendingReview || receipt.Kind != domain.SubmissionKindBin {
		t.Errorf("unexpected receipt %+v", receipt)
	}
	if receipt.Title != usecases.BinReceiptTitle {
		t.Errorf("unexpected title %q", receipt.Title)
	}

	stored, err := store.GetBinSubmission(context.Background(), receipt.ID)
	if err != nil {
		t.Fatalf("submission not stored: %v", err)
	}
	if stored.Submission.Contact != "+919876543210" {
		t.Errorf("expected normalised contact, got %q", stored.Submission.Contact)
	}
	if len(pub.events) != 1 || pub.events[0].SubmissionID != receipt.ID {
		t.Errorf("expected one event for %s, got %+v", receipt.ID, pub.events)
	}
}

func TestSubmitBin_ValidationDetails(t *testing.T) {
	svc := usecases.NewSubmissionService(memory.NewSubmissionStore(), nil, nil, 0)

	sub := validBin()
	sub.Name = "  "
	sub.Pincode = "5600"
	sub.Contact = "12"
	sub.AcceptedItems = []string{"Furniture"}

	_, err := svc.SubmitBin(context.Background(), sub)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatal("expected *apperr.Error")
	}
	for _, field := range []string{"name", "pincode", "contact", "accepted_items[0]"} {
		if _, ok := ae.Details[field]; !ok {
			t.Errorf("expected detail for %s, got %v", field, ae.Details)
		}
	}
}

func TestSubmitBin_PincodeMustBeDigits(t *testing.T) {
	svc := usecases.NewSubmissionService(memory.NewSubmissionStore(), nil, nil, 0)
	sub := validBin()
	sub.Pincode = "56003A"
	if _, err := svc.SubmitBin(context.Background(), sub); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSubmitBin_StoreFailure(t *testing.T) {
	svc := usecases.NewSubmissionService(failingSubmissionRepo{memory.NewSubmissionStore()}, nil, nil, 0)
	_, err := svc.SubmitBin(context.Background(), validBin())
	if !apperr.Is(err, apperr.KindInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestSubmitBin_PublishFailureStillAccepted(t *testing.T) {
	pub := &mockPublisher{err: errors.New("nats down")}
	svc := usecases.NewSubmissionService(memory.NewSubmissionStore(), pub, nil, 0)
	if _, err := svc.SubmitBin(context.Background(), validBin()); err != nil {
		t.Errorf("expected acceptance despite publish failure, got %v", err)
	}
}

func TestSubmitBin_CancelledDuringDelayPersistsNothing(t *testing.T) {
	store := memory.NewSubmissionStore()
	svc := usecases.NewSubmissionService(store, nil, nil, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.SubmitBin(ctx, validBin())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if bins, _ := store.Counts(); bins != 0 {
		t.Errorf("expected nothing stored, got %d", bins)
	}
}

func TestSubmitBin_Delay(t *testing.T) {
	svc := usecases.NewSubmissionService(memory.NewSubmissionStore(), nil, nil, 30*time.Millisecond)
	start := time.Now()
	if _, err := svc.SubmitBin(context.Background(), validBin()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) < 30*time.Millisecond {
		t.Error("expected the configured delay to elapse")
	}
}

func TestSubmitContact(t *testing.T) {
	store := memory.NewSubmissionStore()
	notifier := &mockNotifier{}
	svc := usecases.NewSubmissionService(store, nil, notifier, 0)

	receipt, err := svc.SubmitContact(context.Background(), domain.ContactMessage{
		Name:    "Asha",
		Email:   "asha@example.com",
		Subject: "Pickup",
		Message: "Do you collect old CRT monitors?",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.Status != domain.SubmissionReceived || receipt.Title != usecases.ContactReceiptTitle {
		t.Errorf("unexpected receipt %+v", receipt)
	}
	if _, contacts := store.Counts(); contacts != 1 {
		t.Errorf("expected 1 stored message, got %d", contacts)
	}
	if len(notifier.subjects) != 1 || notifier.subjects[0] != "Contact: Pickup" {
		t.Errorf("unexpected notifications %v", notifier.subjects)
	}
}

func TestSubmitContact_InvalidEmail(t *testing.T) {
	svc := usecases.NewSubmissionService(memory.NewSubmissionStore(), nil, nil, 0)
	_, err := svc.SubmitContact(context.Background(), domain.ContactMessage{
		Name: "A", Email: "not-an-email", Subject: "s", Message: "m",
	})
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ae.Details["email"] != "email" {
		t.Errorf("expected email detail, got %v", ae.Details)
	}
}

package domain

import "time"

// SubmissionKind distinguishes the two public forms.
type SubmissionKind string

const (
	SubmissionKindBin     SubmissionKind = "bin"
	SubmissionKindContact SubmissionKind = "contact"
)

// SubmissionStatus tracks a submission through review.
type SubmissionStatus string

const (
	SubmissionPendingReview SubmissionStatus = "pending_review"
	SubmissionUnderReview   SubmissionStatus = "under_review"
	SubmissionReceived      SubmissionStatus = "received"
	SubmissionFailed        SubmissionStatus = "failed"
)

// BinSubmission is a user-proposed collection point awaiting review.
type BinSubmission struct {
	Name           string   `json:"name" validate:"required,max=120"`
	Address        string   `json:"address" validate:"required,max=300"`
	Area           string   `json:"area" validate:"required,max=120"`
	City           string   `json:"city" validate:"required,max=120"`
	Pincode        string   `json:"pincode" validate:"required,len=6,numeric"`
	Contact        string   `json:"contact" validate:"required,phone"`
	OperatingHours string   `json:"operating_hours" validate:"required,max=120"`
	AcceptedItems  []string `json:"accepted_items" validate:"dive,category_label"`
	AdditionalInfo string   `json:"additional_info,omitempty" validate:"max=1000"`
}

// ContactMessage is a message sent through the contact form.
type ContactMessage struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,phone"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// SubmissionReceipt acknowledges an accepted submission.
type SubmissionReceipt struct {
	ID         string           `json:"id"`
	Kind       SubmissionKind   `json:"kind"`
	Status     SubmissionStatus `json:"status"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	ReceivedAt time.Time        `json:"received_at"`
}

// StoredBinSubmission is a persisted bin submission.
type StoredBinSubmission struct {
	ID         string           `json:"id"`
	Status     SubmissionStatus `json:"status"`
	Submission BinSubmission    `json:"submission"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// StoredContactMessage is a persisted contact message.
type StoredContactMessage struct {
	ID        string           `json:"id"`
	Status    SubmissionStatus `json:"status"`
	Message   ContactMessage   `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}

// BinSubmittedEvent is published once a bin submission is stored.
type BinSubmittedEvent struct {
	SubmissionID string        `json:"submission_id"`
	Submission   BinSubmission `json:"submission"`
	SubmittedAt  time.Time     `json:"submitted_at"`
}

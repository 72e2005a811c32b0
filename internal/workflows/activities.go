package workflows

import (
	"context"
	"fmt"
	"strings"

	"go.temporal.io/sdk/activity"

	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/ports"
)

// ReviewActivities holds the activity implementations for the bin review workflow.
type ReviewActivities struct {
	Submissions ports.SubmissionRepository
	Notifier    ports.Notifier
}

// MarkUnderReview moves a submission into review.
func (a *ReviewActivities) MarkUnderReview(ctx context.Context, submissionID string) error {
	if err := a.Submissions.UpdateBinSubmissionStatus(ctx, submissionID, domain.SubmissionUnderReview); err != nil {
		return fmt.Errorf("mark %s under review: %w", submissionID, err)
	}
	return nil
}

// SendReviewRequest mails the moderators the details of a submission.
func (a *ReviewActivities) SendReviewRequest(ctx context.Context, input BinReviewInput) error {
	if a.Notifier == nil {
		activity.GetLogger(ctx).Info("no notifier configured, skipping review mail", "submissionID", input.SubmissionID)
		return nil
	}
	return a.Notifier.NotifyModerators(ctx, reviewSubject(input), reviewBody(input))
}

// RevertToPending puts a submission back in the queue (saga compensation).
func (a *ReviewActivities) RevertToPending(ctx context.Context, submissionID string) error {
	if err := a.Submissions.UpdateBinSubmissionStatus(ctx, submissionID, domain.SubmissionPendingReview); err != nil {
		return fmt.Errorf("revert %s to pending: %w", submissionID, err)
	}
	activity.GetLogger(ctx).Info("submission reverted to pending review", "submissionID", submissionID)
	return nil
}

func reviewSubject(in BinReviewInput) string {
	return fmt.Sprintf("New bin for review: %s (%s)", in.Submission.Name, in.Submission.City)
}

func reviewBody(in BinReviewInput) string {
	s := in.Submission
	var b strings.Builder
	fmt.Fprintf(&b, "Submission: %s\n", in.SubmissionID)
	fmt.Fprintf(&b, "Name: %s\n", s.Name)
	fmt.Fprintf(&b, "Address: %s, %s, %s %s\n", s.Address, s.Area, s.City, s.Pincode)
	fmt.Fprintf(&b, "Contact: %s\n", s.Contact)
	fmt.Fprintf(&b, "Hours: %s\n", s.OperatingHours)
	if len(s.AcceptedItems) > 0 {
		fmt.Fprintf(&b, "Accepts: %s\n", strings.Join(s.AcceptedItems, ", "))
	}
	if s.AdditionalInfo != "" {
		fmt.Fprintf(&b, "\n%s\n", s.AdditionalInfo)
	}
	return b.String()
}

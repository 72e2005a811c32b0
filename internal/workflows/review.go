package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/ecobin/internal/core/domain"
)

// TaskQueue is the default Temporal task queue of the review worker.
const TaskQueue = "bin-review"

// BinReviewInput is the input for the bin review workflow.
type BinReviewInput struct {
	SubmissionID string
	Submission   domain.BinSubmission
}

// WorkflowID returns the deterministic workflow id of a submission, so a
// redelivered event does not start a second review.
func WorkflowID(submissionID string) string {
	return "bin-review-" + submissionID
}

// BinReviewWorkflow marks a submission as under review and mails the
// moderators. If the mail cannot be sent the submission is returned to
// pending review (saga compensation).
func BinReviewWorkflow(ctx workflow.Context, input BinReviewInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting bin review workflow", "submissionID", input.SubmissionID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Move into review
	if err := workflow.ExecuteActivity(ctx, "MarkUnderReview", input.SubmissionID).Get(ctx, nil); err != nil {
		return err
	}

	// Step 2: Ask the moderators to review
	err := workflow.ExecuteActivity(ctx, "SendReviewRequest", input).Get(ctx, nil)
	if err != nil {
		logger.Warn("review request failed, compensating", "error", err)
		_ = workflow.ExecuteActivity(ctx, "RevertToPending", input.SubmissionID).Get(ctx, nil)
		return err
	}

	logger.Info("Review requested", "submissionID", input.SubmissionID)
	return nil
}

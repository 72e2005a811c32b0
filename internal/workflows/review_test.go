package workflows_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/ecobin/internal/adapters/memory"
	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/workflows"
)

type recordingNotifier struct {
	subjects []string
	err      error
}

func (n *recordingNotifier) NotifyModerators(ctx context.Context, subject, body string) error {
	n.subjects = append(n.subjects, subject)
	return n.err
}

func seed(t *testing.T) (*memory.SubmissionStore, workflows.BinReviewInput) {
	t.Helper()
	store := memory.NewSubmissionStore()
	in := workflows.BinReviewInput{
		SubmissionID: "sub-1",
		Submission: domain.BinSubmission{
			Name: "Koramangala Drop Point", City: "Bangalore", Address: "12 80 Feet Road",
			Area: "Koramangala", Pincode: "560034", Contact: "+919876543210",
			OperatingHours: "Daily", AcceptedItems: []string{"Batteries"},
		},
	}
	now := time.Now().UTC()
	_ = store.CreateBinSubmission(context.Background(), &domain.StoredBinSubmission{
		ID: in.SubmissionID, Status: domain.SubmissionPendingReview,
		Submission: in.Submission, CreatedAt: now, UpdatedAt: now,
	})
	return store, in
}

func status(t *testing.T, store *memory.SubmissionStore, id string) domain.SubmissionStatus {
	t.Helper()
	sub, err := store.GetBinSubmission(context.Background(), id)
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	return sub.Status
}

func TestBinReviewWorkflow_Success(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	store, in := seed(t)
	notifier := &recordingNotifier{}
	env.RegisterActivity(&workflows.ReviewActivities{Submissions: store, Notifier: notifier})

	env.ExecuteWorkflow(workflows.BinReviewWorkflow, in)

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("unexpected workflow error: %v", err)
	}
	if got := status(t, store, in.SubmissionID); got != domain.SubmissionUnderReview {
		t.Errorf("expected under_review, got %s", got)
	}
	if len(notifier.subjects) != 1 || notifier.subjects[0] != "New bin for review: Koramangala Drop Point (Bangalore)" {
		t.Errorf("unexpected notifications %v", notifier.subjects)
	}
}

func TestBinReviewWorkflow_NotifyFailureCompensates(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	store, in := seed(t)
	notifier := &recordingNotifier{err: errors.New("smtp unreachable")}
	env.RegisterActivity(&workflows.ReviewActivities{Submissions: store, Notifier: notifier})

	env.ExecuteWorkflow(workflows.BinReviewWorkflow, in)

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if env.GetWorkflowError() == nil {
		t.Fatal("expected workflow error")
	}
	if got := status(t, store, in.SubmissionID); got != domain.SubmissionPendingReview {
		t.Errorf("expected compensation back to pending_review, got %s", got)
	}
	if len(notifier.subjects) != 3 {
		t.Errorf("expected 3 delivery attempts, got %d", len(notifier.subjects))
	}
}

func TestBinReviewWorkflow_MissingSubmission(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	notifier := &recordingNotifier{}
	env.RegisterActivity(&workflows.ReviewActivities{Submissions: memory.NewSubmissionStore(), Notifier: notifier})

	env.ExecuteWorkflow(workflows.BinReviewWorkflow, workflows.BinReviewInput{SubmissionID: "ghost"})

	if env.GetWorkflowError() == nil {
		t.Fatal("expected workflow error for unknown submission")
	}
	if len(notifier.subjects) != 0 {
		t.Error("moderators must not be mailed for an unknown submission")
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/ecobin/internal/adapters/mail"
	natsadapter "github.com/samirrijal/ecobin/internal/adapters/nats"
	"github.com/samirrijal/ecobin/internal/adapters/postgres"
	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/pkg/config"
	"github.com/samirrijal/ecobin/internal/pkg/logging"
	"github.com/samirrijal/ecobin/internal/workflows"
)

// reviewer consumes bin submission events from NATS, starts a review
// workflow for each and runs the Temporal worker executing them.
func main() {
	cfg, err := config.Load("ecobin-reviewer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.SetupFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.BinReviewWorkflow)
	w.RegisterActivity(&workflows.ReviewActivities{
		Submissions: postgres.NewSubmissionRepo(db),
		Notifier:    mail.NewNotifier(cfg.Mail),
	})

	// Start a workflow per submitted bin
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeBinSubmitted(ctx, func(ctx context.Context, event *domain.BinSubmittedEvent) error {
		run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:                    workflows.WorkflowID(event.SubmissionID),
			TaskQueue:             cfg.Temporal.TaskQueue,
			WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
		}, workflows.BinReviewWorkflow, workflows.BinReviewInput{
			SubmissionID: event.SubmissionID,
			Submission:   event.Submission,
		})
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &started) {
			// Redelivered event.
			slog.Debug("review already started", "submissionID", event.SubmissionID)
			return nil
		}
		if err != nil {
			return err
		}
		slog.Info("review started", "submissionID", event.SubmissionID, "runID", run.GetRunID())
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("reviewer worker started", "taskQueue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

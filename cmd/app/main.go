package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/civiclens/councilscribe/internal/bootstrap"
	"github.com/civiclens/councilscribe/internal/domain/records"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := initializeApp()
	if err != nil {
		log.Fatalf("failed to wire application: %v", err)
	}

	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "serve":
		if err := app.Run(ctx); err != nil {
			log.Fatalf("application stopped with error: %v", err)
		}
	case "summarize":
		if err := runSummarize(ctx, app, args); err != nil {
			log.Fatalf("summarize failed: %v", err)
		}
	default:
		log.Fatalf("unknown command %q (expected serve or summarize)", command)
	}
}

func runSummarize(ctx context.Context, app *bootstrap.App, args []string) error {
	flags := flag.NewFlagSet("summarize", flag.ExitOnError)
	kindFlag := flags.String("kind", "documents", "entity kind to summarize: documents, legislation or meetings")
	styleFlag := flags.String("style", "", "summary style name (default: configured style)")
	forceFlag := flags.Bool("force", false, "regenerate summaries that already exist")
	if err := flags.Parse(args); err != nil {
		return err
	}

	var kind records.EntityKind
	switch *kindFlag {
	case "documents":
		kind = records.EntityDocument
	case "legislation":
		kind = records.EntityLegislation
	case "meetings":
		kind = records.EntityMeeting
	default:
		return fmt.Errorf("unknown kind %q (expected documents, legislation or meetings)", *kindFlag)
	}

	result, err := app.RunBatch(ctx, kind, *styleFlag, *forceFlag)
	if err != nil {
		return err
	}

	fmt.Printf("succeeded: %d, failed: %d\n", result.Succeeded, result.Failed)
	for _, batchErr := range result.Errors {
		fmt.Printf("  %s: %s\n", batchErr.EntityID, batchErr.Message)
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d entities failed", result.Failed)
	}
	return nil
}

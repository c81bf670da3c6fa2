// receipt-reconcile replays a saved extraction result against a job: it
// seeds the verification session, prints the reconciliation it would
// perform, and (when confirmed) posts the lines to the live backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/rewixxcloud/jobs_client/config"
	"bitbucket.org/rewixxcloud/jobs_client/jobs"
	"bitbucket.org/rewixxcloud/jobs_client/models"
	"bitbucket.org/rewixxcloud/jobs_client/workflow"
)

func main() {
	jobID := flag.Int("job-id", 0, "Required: job id to attach materials to")
	file := flag.String("file", "", "Required: path to an extraction result JSON")
	dryRun := flag.Bool("dry-run", true, "Show the seeded reconciliation only (no writes)")
	confirm := flag.String("confirm", "", "Type ADD to proceed when dry-run=false")
	flag.Parse()

	if *jobID <= 0 || strings.TrimSpace(*file) == "" {
		fmt.Fprintln(os.Stderr, "--job-id and --file are required")
		os.Exit(1)
	}
	if !*dryRun && strings.TrimSpace(*confirm) != "ADD" {
		fmt.Fprintln(os.Stderr, "set --confirm=ADD to proceed")
		os.Exit(1)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %v\n", *file, err)
		os.Exit(1)
	}
	var draft models.ReceiptDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		fmt.Fprintf(os.Stderr, "parsing extraction result: %v\n", err)
		os.Exit(1)
	}

	session := workflow.NewVerificationSession(*jobID, draft)
	printSession(session)

	if *dryRun {
		return
	}

	config.ConnectRedisWithRetry()
	manager := jobs.NewDefaultManager()
	session.OnStatus = func(status string) { fmt.Println(status) }

	// the harness skips review: lines go to the ledger as extracted/seeded
	session.Next()
	session.Next()

	result, err := manager.ConfirmReceipt(context.Background(), session)
	if err != nil {
		fmt.Fprintf(os.Stderr, "confirm failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("added=%d failed=%d receipt=%s total=%s\n",
		result.ItemsAdded, result.ItemsFailed, result.ReceiptId, result.Total.StringFixed(2))
}

func printSession(session *workflow.VerificationSession) {
	fmt.Printf("vendor=%q subtotal=%s tax=%s total=%s step=%s\n",
		session.Receipt.Vendor,
		session.Receipt.Subtotal.StringFixed(2),
		session.Receipt.Tax.StringFixed(2),
		session.Receipt.Total.StringFixed(2),
		session.Step())
	for i, item := range session.Items() {
		fmt.Printf("  item[%d] %q qty=%d price=%s total=%s\n",
			i, item.Name, item.Quantity, item.Price.StringFixed(2), item.Total.StringFixed(2))
	}
	for i, item := range session.MissingItems() {
		fmt.Printf("  missing[%d] %q qty=%d price=%s total=%s\n",
			i, item.Name, item.Quantity, item.Price.StringFixed(2), item.Total.StringFixed(2))
	}
}

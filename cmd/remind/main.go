package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/qs3c/bill_reminder_server/config"
	"github.com/qs3c/bill_reminder_server/internal/app"
	"github.com/qs3c/bill_reminder_server/internal/model"
	"github.com/qs3c/bill_reminder_server/internal/pkg/log"
	"github.com/qs3c/bill_reminder_server/internal/reminder"
	"github.com/qs3c/bill_reminder_server/internal/repository"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run subscription reminders by hand",
	Long: `remind executes a single reminder pass outside the scheduler.

It shares the server's configuration and ledger, so a subscription that
was already reminded for today's milestone is skipped here as well.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one reminder pass for a channel",
	RunE:  runReminders,
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "List subscriptions a channel would consider today",
	RunE:  runPreview,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")

	runCmd.Flags().String("channel", "email", "Channel to run (email|whatsapp)")
	runCmd.Flags().Bool("dry-run", false, "Render messages without sending or touching the ledger")
	runCmd.Flags().Int64("subscription", 0, "Only process this subscription ID")
	runCmd.Flags().Bool("json", false, "Print the result as JSON")

	previewCmd.Flags().String("channel", "email", "Channel to preview (email|whatsapp)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
}

func bootstrap() (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log.Init(log.Config{Level: log.Level(cfg.Log.Level), JSONOutput: cfg.Log.JSON, Output: os.Stderr})
	return app.New(cfg)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runReminders(cmd *cobra.Command, _ []string) error {
	channel, _ := cmd.Flags().GetString("channel")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	subID, _ := cmd.Flags().GetInt64("subscription")
	asJSON, _ := cmd.Flags().GetBool("json")

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	out := cmd.OutOrStdout()
	if subID > 0 {
		outcome, err := a.Cron.RunOne(ctx, model.Channel(channel), subID, dryRun)
		if err != nil {
			return err
		}
		if asJSON {
			return json.NewEncoder(out).Encode(outcome)
		}
		printOutcome(cmd, subID, outcome)
		return nil
	}

	result, err := a.Cron.RunNow(ctx, model.Channel(channel), dryRun)
	if err != nil {
		return err
	}
	if asJSON {
		return json.NewEncoder(out).Encode(result)
	}

	fmt.Fprintf(out, "Channel:   %s\n", result.Channel)
	fmt.Fprintf(out, "Run ID:    %s\n", result.RunID)
	fmt.Fprintf(out, "Status:    %s\n", result.Status)
	fmt.Fprintf(out, "Processed: %d\n", result.Processed)
	fmt.Fprintf(out, "Sent:      %d\n", result.Sent)
	fmt.Fprintf(out, "Skipped:   %d\n", result.Skipped)
	fmt.Fprintf(out, "Errors:    %d\n", result.Errors)
	if result.DryRun {
		fmt.Fprintln(out, "\nDRY RUN - nothing was sent and the ledger was not updated")
	}
	if result.Errors > 0 {
		return fmt.Errorf("%d subscription(s) failed", result.Errors)
	}
	return nil
}

func printOutcome(cmd *cobra.Command, id int64, outcome reminder.Outcome) {
	out := cmd.OutOrStdout()
	switch {
	case outcome.Sent && outcome.DryRun:
		fmt.Fprintf(out, "subscription %d: would send\n", id)
	case outcome.Sent:
		fmt.Fprintf(out, "subscription %d: sent (%s)\n", id, outcome.MessageID)
	default:
		fmt.Fprintf(out, "subscription %d: skipped (%s)\n", id, outcome.Skip)
	}
}

func runPreview(cmd *cobra.Command, _ []string) error {
	channel, _ := cmd.Flags().GetString("channel")

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	subs, err := repository.NewSubscriptionRepository(a.DB).FindActiveEligible(ctx, model.Channel(channel))
	if err != nil {
		return err
	}

	now := time.Now()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSERVICE\tEND DATE\tDAYS\tMILESTONE")
	for _, sub := range subs {
		if sub.EndDate == nil {
			fmt.Fprintf(w, "%d\t%s\t-\t-\t-\n", sub.ID, sub.ServiceName)
			continue
		}
		days := reminder.DaysRemaining(*sub.EndDate, now)
		milestone := "-"
		if m, ok := reminder.MilestoneFor(days); ok {
			milestone = fmt.Sprintf("%d", m)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", sub.ID, sub.ServiceName, sub.EndDate.Format("2006-01-02"), days, milestone)
	}
	return w.Flush()
}

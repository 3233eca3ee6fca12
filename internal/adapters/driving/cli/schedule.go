package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

var scheduleHistory int

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show the in-process scheduler's tasks",
	Long: `Lists the tasks 'leadsync serve' runs on its own, with their last and next
runs. Use --history to include recent results.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().IntVar(&scheduleHistory, "history", 0, "number of recent runs to show per task")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	if scheduleHistory < 0 {
		return fmt.Errorf("%w: --history must not be negative", domain.ErrInvalidInput)
	}
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	if svc.Schedule == nil {
		return errors.New("scheduler store not configured")
	}

	tasks, err := svc.Schedule.ListTasks(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	if len(tasks) == 0 {
		cmd.Println("No scheduled tasks. They are created when 'leadsync serve' starts.")
		return nil
	}

	for i := range tasks {
		task := &tasks[i]
		cmd.Printf("  %s (%s)\n", task.Name, task.ID)
		cmd.Printf("    Every: %s\n", task.Interval)
		cmd.Printf("    Last run: %s\n", formatRun(task.LastRun, "never"))
		cmd.Printf("    Next run: %s\n", formatRun(task.NextRun, "due now"))
		if task.LastError != "" {
			cmd.Printf("    Last error: %s\n", task.LastError)
		}

		if scheduleHistory == 0 {
			continue
		}
		results, err := svc.Schedule.GetTaskHistory(cmd.Context(), task.ID, scheduleHistory)
		if err != nil {
			return fmt.Errorf("failed to load history for %s: %w", task.ID, err)
		}
		for _, r := range results {
			status := "ok"
			if !r.Success {
				status = "failed: " + r.Error
			}
			cmd.Printf("      %s  %d items  %s  %s\n",
				r.StartedAt.Local().Format(time.DateTime), r.ItemsProcessed,
				r.Duration().Round(time.Millisecond), status)
		}
	}
	return nil
}

func formatRun(t time.Time, zero string) string {
	if t.IsZero() {
		return zero
	}
	return t.Local().Format(time.DateTime)
}

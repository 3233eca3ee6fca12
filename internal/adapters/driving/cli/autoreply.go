package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/leadsync/internal/core/domain"
)

var autoReplyCmd = &cobra.Command{
	Use:   "autoreply",
	Short: "Manage a tenant's auto-reply settings",
	Long: `Show and change the rules that decide which leads get an automatic reply.

Examples:
  leadsync autoreply show acme
  leadsync autoreply enable acme
  leadsync autoreply set acme --tone friendly --length short --max-daily 20
  leadsync autoreply set acme --business-hours-only --start-hour 8 --end-hour 18`,
}

var autoReplyShowCmd = &cobra.Command{
	Use:   "show [tenant-id]",
	Short: "Show auto-reply settings",
	Args:  cobra.ExactArgs(1),
	RunE:  runAutoReplyShow,
}

var autoReplyEnableCmd = &cobra.Command{
	Use:   "enable [tenant-id]",
	Short: "Turn auto-reply on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAutoReply(cmd, args[0], true)
	},
}

var autoReplyDisableCmd = &cobra.Command{
	Use:   "disable [tenant-id]",
	Short: "Turn auto-reply off and forget in-flight reply claims",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAutoReply(cmd, args[0], false)
	},
}

var autoReplySetCmd = &cobra.Command{
	Use:   "set [tenant-id]",
	Short: "Change auto-reply settings",
	Long:  `Changes only the settings given as flags; the rest keep their current values.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAutoReplySet,
}

// Flags for autoreply set.
var (
	arTone          string
	arLength        string
	arThreshold     float64
	arMaxDaily      int
	arBusinessHours bool
	arStartHour     int
	arEndHour       int
)

func init() {
	f := autoReplySetCmd.Flags()
	f.StringVar(&arTone, "tone", "", "Reply tone: professional, friendly, formal or casual")
	f.StringVar(&arLength, "length", "", "Reply length: short, medium or long")
	f.Float64Var(&arThreshold, "threshold", 0, "Minimum classifier confidence, 0 to 1 (0 disables)")
	f.IntVar(&arMaxDaily, "max-daily", 0, "Maximum automatic replies per day (0 is unlimited)")
	f.BoolVar(&arBusinessHours, "business-hours-only", false, "Only reply on weekdays within business hours")
	f.IntVar(&arStartHour, "start-hour", 9, "First business hour (0-23)")
	f.IntVar(&arEndHour, "end-hour", 17, "Hour business closes (1-24)")

	autoReplyCmd.AddCommand(autoReplyShowCmd)
	autoReplyCmd.AddCommand(autoReplyEnableCmd)
	autoReplyCmd.AddCommand(autoReplyDisableCmd)
	autoReplyCmd.AddCommand(autoReplySetCmd)
	rootCmd.AddCommand(autoReplyCmd)
}

func controls(cmd *cobra.Command) (*Services, error) {
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return nil, err
	}
	if svc.Controls == nil {
		return nil, errors.New("auto-reply controls not configured")
	}
	return svc, nil
}

func runAutoReplyShow(cmd *cobra.Command, args []string) error {
	svc, err := controls(cmd)
	if err != nil {
		return err
	}

	s, err := svc.Controls.Settings(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	printSettings(cmd, args[0], s)
	return nil
}

func printSettings(cmd *cobra.Command, tenantID string, s domain.AutoReplySettings) {
	cmd.Printf("Auto-reply for tenant %s:\n", tenantID)
	cmd.Printf("  Enabled:        %s\n", onOff(s.Enabled))
	cmd.Printf("  Tone:           %s\n", s.Tone)
	cmd.Printf("  Length:         %s\n", s.Length)
	if s.ConfidenceThreshold > 0 {
		cmd.Printf("  Min confidence: %.2f\n", s.ConfidenceThreshold)
	} else {
		cmd.Println("  Min confidence: any")
	}
	if s.BusinessHoursOnly {
		cmd.Printf("  Business hours: weekdays %02d:00-%02d:00\n", s.BusinessHours.StartHour, s.BusinessHours.EndHour)
	} else {
		cmd.Println("  Business hours: any time")
	}
	if s.MaxDailyReplies > 0 {
		cmd.Printf("  Daily cap:      %d\n", s.MaxDailyReplies)
	} else {
		cmd.Println("  Daily cap:      unlimited")
	}
}

func setAutoReply(cmd *cobra.Command, tenantID string, enabled bool) error {
	svc, err := controls(cmd)
	if err != nil {
		return err
	}
	if err := svc.Controls.SetAutoReplyEnabled(cmd.Context(), tenantID, enabled); err != nil {
		return fmt.Errorf("failed to update auto-reply: %w", err)
	}
	cmd.Printf("Auto-reply %s for tenant %s.\n", onOff(enabled), tenantID)
	return nil
}

func runAutoReplySet(cmd *cobra.Command, args []string) error {
	svc, err := controls(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	tenantID := args[0]
	s, err := svc.Controls.Settings(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	f := cmd.Flags()
	if f.Changed("tone") {
		s.Tone = domain.Tone(arTone)
	}
	if f.Changed("length") {
		s.Length = domain.ReplyLength(arLength)
	}
	if f.Changed("threshold") {
		s.ConfidenceThreshold = arThreshold
	}
	if f.Changed("max-daily") {
		s.MaxDailyReplies = arMaxDaily
	}
	if f.Changed("business-hours-only") {
		s.BusinessHoursOnly = arBusinessHours
	}
	if f.Changed("start-hour") {
		s.BusinessHours.StartHour = arStartHour
	}
	if f.Changed("end-hour") {
		s.BusinessHours.EndHour = arEndHour
	}

	if err := svc.Controls.UpdateSettings(ctx, tenantID, s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	printSettings(cmd, tenantID, s)
	return nil
}

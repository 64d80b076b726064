package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/certguru/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and roll over training sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Archive the current session into history and start a new one",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		var active *float64
		if cmd.Flags().Changed("active-minutes") {
			m, _ := cmd.Flags().GetFloat64("active-minutes")
			if m < 0 {
				return fmt.Errorf("--active-minutes must not be negative")
			}
			active = &m
		}

		prev, err := d.trainer.StartNewSession(cmd.Context(), active)
		if err != nil {
			return fmt.Errorf("start session: %w", err)
		}
		fmt.Println("New session started.")
		if prev.QuestionsAnswered > 0 {
			printSummary("Previous session", prev)
		}
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List finished sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		sessions, err := d.trainer.Sessions(cmd.Context())
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sessions)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded yet.")
			return nil
		}

		fmt.Printf("%-16s  %8s  %9s  %8s  %s\n", "Started", "Minutes", "Questions", "Accuracy", "Tags")
		fmt.Println(strings.Repeat("─", 72))
		for _, s := range sessions {
			fmt.Printf("%-16s  %8.1f  %9d  %7.1f%%  %s\n",
				s.StartTime.Local().Format("2006-01-02 15:04"),
				s.DurationMinutes, s.TotalQuestions, s.Accuracy,
				truncate(strings.Join(s.Tags, ","), 30))
		}
		return nil
	},
}

func printSummary(title string, s session.Summary) {
	fmt.Println(title)
	fmt.Printf("  Answered:  %d (%d correct, %d incorrect)\n", s.QuestionsAnswered, s.CorrectAnswers, s.IncorrectAnswers)
	fmt.Printf("  Accuracy:  %.1f%%\n", s.AccuracyPercent)
	fmt.Printf("  Duration:  %.1f min\n", s.DurationMinutes)
	if len(s.Tags) > 0 {
		fmt.Printf("  Tags:      %s\n", strings.Join(s.Tags, ", "))
	}
}

func init() {
	sessionStartCmd.Flags().Float64("active-minutes", 0, "Record this many active minutes instead of wall-clock time")
	sessionListCmd.Flags().Bool("json", false, "Print sessions as JSON")

	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionListCmd)
}

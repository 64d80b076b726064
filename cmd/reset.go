package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/certguru/internal/trainer"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset progress, fully or selectively",
	Long: "Without selection flags, reset clears every score, star, note and cached text and drops all " +
		"session history; --yes is required. With selection flags only the named parts are reset.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts trainer.ResetOptions
		opts.Scores, _ = cmd.Flags().GetBool("scores")
		opts.SessionHistory, _ = cmd.Flags().GetBool("history")
		opts.Stars, _ = cmd.Flags().GetBool("stars")
		opts.Notes, _ = cmd.Flags().GetBool("notes")
		opts.TrainingTime, _ = cmd.Flags().GetBool("training-time")
		clearExplanations, _ := cmd.Flags().GetBool("explanations")
		clearHints, _ := cmd.Flags().GetBool("hints")
		yes, _ := cmd.Flags().GetBool("yes")

		selective := opts.Any() || clearExplanations || clearHints
		if !selective && !yes {
			return errors.New("refusing to reset everything without --yes")
		}

		d, err := buildDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()
		ctx := cmd.Context()

		if !selective {
			if err := d.trainer.Reset(ctx); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			fmt.Println("All progress has been reset.")
			return nil
		}

		if opts.Any() {
			if _, err := d.trainer.ResetSelective(ctx, opts); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			fmt.Println("Selected progress has been reset.")
		}
		if clearExplanations {
			n, err := d.trainer.ClearExplanations(ctx)
			if err != nil {
				return fmt.Errorf("clear explanations: %w", err)
			}
			fmt.Printf("Cleared explanations from %d questions.\n", n)
		}
		if clearHints {
			n, err := d.trainer.ClearHints(ctx)
			if err != nil {
				return fmt.Errorf("clear hints: %w", err)
			}
			fmt.Printf("Cleared hints from %d questions.\n", n)
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("scores", false, "Reset every question score to 0")
	resetCmd.Flags().Bool("history", false, "Drop daily and per-session history")
	resetCmd.Flags().Bool("stars", false, "Unstar every question")
	resetCmd.Flags().Bool("notes", false, "Delete every note")
	resetCmd.Flags().Bool("training-time", false, "Zero the recorded training time")
	resetCmd.Flags().Bool("explanations", false, "Clear cached explanations")
	resetCmd.Flags().Bool("hints", false, "Clear cached hints")
	resetCmd.Flags().BoolP("yes", "y", false, "Confirm a full reset")
}

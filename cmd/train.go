package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/certguru/internal/app"
	"github.com/abhisek/certguru/internal/scoring"
	"github.com/abhisek/certguru/internal/screens/train"
	"github.com/abhisek/certguru/internal/selector"
)

type trainFlags struct {
	tags    []string
	levels  []string
	starred bool
	shuffle bool
	direct  bool
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Start the interactive terminal trainer",
	RunE: func(cmd *cobra.Command, args []string) error {
		var f trainFlags
		f.tags, _ = cmd.Flags().GetStringSlice("tag")
		f.levels, _ = cmd.Flags().GetStringSlice("level")
		f.starred, _ = cmd.Flags().GetBool("starred")
		f.shuffle, _ = cmd.Flags().GetBool("shuffle")
		f.direct = true
		return runTrain(cmd, f)
	},
}

func init() {
	trainCmd.Flags().StringSlice("tag", nil, "Only train questions with these tags (repeatable, OR semantics)")
	trainCmd.Flags().StringSlice("level", nil, "Only train questions in these mastery levels: mistakes, learning, mastered, perfected")
	trainCmd.Flags().Bool("starred", false, "Only train starred questions")
	trainCmd.Flags().Bool("shuffle", false, "Shuffle answer order (defaults to training.shuffle)")
}

// runTrain opens the store, builds dependencies, and launches the TUI.
func runTrain(cmd *cobra.Command, f trainFlags) error {
	filter, err := buildFilter(f.tags, f.levels, f.starred)
	if err != nil {
		return err
	}

	d, err := buildDeps(cmd, depsOptions{quietLog: true})
	if err != nil {
		return err
	}
	defer d.Close()

	return app.Run(app.Options{
		Trainer: d.trainer,
		Train: train.Options{
			Filter:  filter,
			Shuffle: f.shuffle || d.cfg.Training.Shuffle,
		},
		Direct: f.direct,
	})
}

func buildFilter(tags, levels []string, starred bool) (selector.Filter, error) {
	f := selector.Filter{Tags: tags, StarredOnly: starred}
	for _, l := range levels {
		band, err := scoring.ParseBand(strings.TrimSpace(strings.ToLower(l)))
		if err != nil {
			return selector.Filter{}, fmt.Errorf("invalid --level: %w", err)
		}
		f.Levels = append(f.Levels, band)
	}
	return f, nil
}

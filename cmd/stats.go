package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/certguru/internal/progress"
	"github.com/abhisek/certguru/internal/ui/components"
	"github.com/abhisek/certguru/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show mastery progress and training history",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		p, err := d.trainer.Progress(cmd.Context())
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		}

		fmt.Println(renderStats(p))
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "Print the progress document as JSON")
}

func renderStats(p progress.UserProgress) string {
	o := p.Overall
	heading := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	b.WriteString(heading.Render("Overall"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %d active questions, %d starred, %d with notes\n",
		o.TotalQuestions, o.StarredQuestions, o.QuestionsWithNotes))
	b.WriteString("  ")
	b.WriteString(theme.BandColor("mistakes").Render(fmt.Sprintf("mistakes %d", o.MistakesCount)))
	b.WriteString("  ")
	b.WriteString(theme.BandColor("learning").Render(fmt.Sprintf("learning %d", o.LearningCount)))
	b.WriteString("  ")
	b.WriteString(theme.BandColor("mastered").Render(fmt.Sprintf("mastered %d", o.MasteredCount)))
	b.WriteString("  ")
	b.WriteString(theme.BandColor("perfected").Render(fmt.Sprintf("perfected %d", o.PerfectedCount)))
	b.WriteString("\n")
	b.WriteString(dim.Render(fmt.Sprintf("  %.1f min trained, %d day streak", o.TotalTrainingTimeMinutes, p.StreakDays)))
	b.WriteString("\n\n")

	if len(o.TagProgress) > 0 {
		b.WriteString(heading.Render("By tag"))
		b.WriteString("\n")
		for _, tp := range o.TagProgress {
			label := fmt.Sprintf("  %-24s", truncate(tp.Tag, 24))
			bar := components.NewProgressBar(label, tp.MasteryPercentage/100, true, 64)
			b.WriteString(bar.View())
			b.WriteString(dim.Render(fmt.Sprintf("  %d/%d", tp.MasteredCount+tp.PerfectedCount, tp.TotalQuestions)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(p.SessionHistory) > 0 {
		b.WriteString(heading.Render("Daily history"))
		b.WriteString("\n")
		for _, day := range p.SessionHistory {
			b.WriteString(fmt.Sprintf("  %s  %4d questions  %5.1f%% accuracy  %6.1f min\n",
				day.Date.Format("2006-01-02"), day.TotalQuestions, day.Accuracy, day.DurationMinutes))
		}
		b.WriteString("\n")
	}

	cur := p.CurrentSession
	b.WriteString(heading.Render("Current session"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %d answered, %d correct, %.1f%% accuracy, started %s",
		cur.TotalQuestions, cur.CorrectAnswers, cur.Accuracy, cur.SessionStart.Format("15:04")))
	return b.String()
}

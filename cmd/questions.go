package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/certguru/internal/question"
	"github.com/abhisek/certguru/internal/trainer"
)

var questionsCmd = &cobra.Command{
	Use:     "questions",
	Aliases: []string{"q"},
	Short:   "List and edit questions",
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions",
	Long: "List questions, optionally narrowed by tag, text search, starred flag or a CEL expression " +
		"over number, text, tags, score, band, starred, note, active and case_study, " +
		`e.g. --filter 'score < 0 && "networking" in tags'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts trainer.ListOptions
		opts.Tags, _ = cmd.Flags().GetStringSlice("tag")
		opts.Search, _ = cmd.Flags().GetString("search")
		opts.StarredOnly, _ = cmd.Flags().GetBool("starred")
		opts.IncludeInactive, _ = cmd.Flags().GetBool("all")
		if src, _ := cmd.Flags().GetString("filter"); src != "" {
			expr, err := question.CompileExpr(src)
			if err != nil {
				return fmt.Errorf("invalid --filter: %w", err)
			}
			opts.Expr = expr
		}

		d, err := buildDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		qs, err := d.trainer.List(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("list questions: %w", err)
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(qs)
		}
		if len(qs) == 0 {
			fmt.Println("No questions found.")
			return nil
		}

		fmt.Printf("%-5s  %5s  %-9s  %-2s  %-24s  %s\n", "#", "Score", "Band", "", "Tags", "Question")
		fmt.Println(strings.Repeat("─", 100))
		for _, q := range qs {
			flags := ""
			if q.Starred {
				flags += "★"
			}
			if !q.Active {
				flags += "−"
			}
			fmt.Printf("%-5d  %5d  %-9s  %-2s  %-24s  %s\n",
				q.Number, q.Score, q.Band(), flags,
				truncate(strings.Join(q.Tags, ","), 24),
				truncate(strings.Join(strings.Fields(q.Text), " "), 50))
		}
		fmt.Printf("\n%d questions\n", len(qs))
		return nil
	},
}

var questionsShowCmd = &cobra.Command{
	Use:   "show <number>",
	Short: "Show one question with its answers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseNumber(args[0])
		if err != nil {
			return err
		}
		d, err := buildDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		q, err := d.trainer.Question(cmd.Context(), n)
		if err != nil {
			return err
		}
		printQuestion(q)
		return nil
	},
}

var questionsStarCmd = &cobra.Command{
	Use:   "star <number>",
	Short: "Star a question (use --off to unstar)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseNumber(args[0])
		if err != nil {
			return err
		}
		off, _ := cmd.Flags().GetBool("off")

		d, err := buildDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		q, err := d.trainer.Star(cmd.Context(), n, !off)
		if err != nil {
			return err
		}
		if q.Starred {
			fmt.Printf("Question %d starred.\n", n)
		} else {
			fmt.Printf("Question %d unstarred.\n", n)
		}
		return nil
	},
}

var questionsNoteCmd = &cobra.Command{
	Use:   "note <number> [text...]",
	Short: "Set a question's note; no text clears it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseNumber(args[0])
		if err != nil {
			return err
		}
		d, err := buildDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		if _, err := d.trainer.SetNote(cmd.Context(), n, strings.Join(args[1:], " ")); err != nil {
			return err
		}
		fmt.Printf("Note saved for question %d.\n", n)
		return nil
	},
}

func newSetActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <number>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			numbers := make([]int, 0, len(args))
			for _, a := range args {
				n, err := parseNumber(a)
				if err != nil {
					return err
				}
				numbers = append(numbers, n)
			}

			d, err := buildDeps(cmd, depsOptions{})
			if err != nil {
				return err
			}
			defer d.Close()

			changed, missing, err := d.trainer.SetActive(cmd.Context(), numbers, active)
			if err != nil {
				return err
			}
			fmt.Printf("%d questions %sd.\n", changed, use)
			if len(missing) > 0 {
				fmt.Printf("Not found: %v\n", missing)
			}
			return nil
		},
	}
}

func parseNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid question number %q", s)
	}
	return n, nil
}

func printQuestion(q *question.Question) {
	fmt.Printf("Question %d  [%s]  score %d (%s)\n", q.Number, strings.Join(q.Tags, ", "), q.Score, q.Band())
	if q.CaseStudy != "" {
		fmt.Printf("Case study: %s\n", q.CaseStudy)
	}
	fmt.Println()
	fmt.Println(q.Text)
	fmt.Println()
	for _, a := range q.Answers {
		mark := " "
		if a.Correct {
			mark = "✓"
		}
		fmt.Printf("  %s %s) %s\n", mark, strings.ToUpper(a.Key), a.Text)
	}
	if q.Note != "" {
		fmt.Printf("\nNote: %s\n", q.Note)
	}
	if q.Explanation != "" {
		fmt.Printf("\nExplanation: %s\n", q.Explanation)
	}
}

func init() {
	questionsListCmd.Flags().StringSlice("tag", nil, "Filter by tag (repeatable, OR semantics; \"starred\" adds starred questions)")
	questionsListCmd.Flags().String("search", "", "Case-insensitive search over question and answer text")
	questionsListCmd.Flags().Bool("starred", false, "Only starred questions")
	questionsListCmd.Flags().Bool("all", false, "Include deactivated questions")
	questionsListCmd.Flags().String("filter", "", "CEL expression over question fields")
	questionsListCmd.Flags().Bool("json", false, "Print questions as JSON")
	questionsStarCmd.Flags().Bool("off", false, "Unstar instead")

	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsShowCmd)
	questionsCmd.AddCommand(questionsStarCmd)
	questionsCmd.AddCommand(questionsNoteCmd)
	questionsCmd.AddCommand(newSetActiveCmd("activate", "Reactivate questions", true))
	questionsCmd.AddCommand(newSetActiveCmd("deactivate", "Deactivate questions so they are never served", false))
}

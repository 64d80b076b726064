package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Import a question bank file",
	Long: "Import questions from a bank JSON file (or stdin with -). New questions are added; " +
		"existing ones are skipped unless --overwrite is set, which replaces their content " +
		"but keeps score, star, note, explanation and hint.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		overwrite, _ := cmd.Flags().GetBool("overwrite")

		var r io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open bank file: %w", err)
			}
			defer f.Close()
			r = f
		}

		d, err := buildDeps(cmd, depsOptions{})
		if err != nil {
			return err
		}
		defer d.Close()

		stats, res, err := d.trainer.Import(cmd.Context(), r, overwrite)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		fmt.Printf("Imported into %s: %d added, %d updated, %d skipped\n",
			res.Backend, stats.Added, stats.Updated, stats.Skipped)
		if res.Degraded() {
			for _, f := range res.Failures {
				fmt.Fprintf(os.Stderr, "warning: backend %s failed: %v\n", f.Backend, f.Err)
			}
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file|-]",
	Short: "Export all questions, with progress, as a bank file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd, depsOptions{quietLog: true})
		if err != nil {
			return err
		}
		defer d.Close()

		var w io.Writer = os.Stdout
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			defer f.Close()
			w = f
		}

		n, err := d.trainer.Export(cmd.Context(), w)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if len(args) == 1 && args[0] != "-" {
			fmt.Printf("Exported %d questions to %s\n", n, args[0])
		}
		return nil
	},
}

func init() {
	importCmd.Flags().Bool("overwrite", false, "Replace the content of existing questions")
}

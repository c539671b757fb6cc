package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type RunnerConfig struct {
	Dir        string
	Strict     bool
	AssignIDs  bool
	YAMLReport string
}

func main() {
	var cfg RunnerConfig

	root := &cobra.Command{
		Use:   "lessonlint",
		Short: "Validate and normalize the lesson catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runLint(cfg)
			printSummary(result, err)
			if err != nil {
				return err
			}
			if cfg.Strict && len(result.Problems) > 0 {
				return fmt.Errorf("strict mode: %d problems found", len(result.Problems))
			}
			return nil
		},
	}

	root.Flags().StringVar(&cfg.Dir, "dir", "internal/catalog/data", "catalog directory to lint")
	root.Flags().BoolVar(&cfg.Strict, "strict", false, "exit non-zero on any problem")
	root.Flags().BoolVar(&cfg.AssignIDs, "assign-ids", false, "write generated ids for lessons missing one")
	root.Flags().StringVar(&cfg.YAMLReport, "yaml-report", "", "write a YAML lint report to this path")

	root.SilenceUsage = true
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func printSummary(result LintResult, runErr error) {
	color.New(color.FgWhite).Printf("Scanned %d files (%d topics, %d lessons, %d words)\n",
		result.FilesScanned, result.TopicCount, result.LessonCount, result.WordCount)

	if result.IDsAssigned > 0 {
		color.New(color.FgHiCyan).Printf("Assigned %d missing lesson ids\n", result.IDsAssigned)
	}

	for _, problem := range result.Problems {
		if strings.HasPrefix(problem, "warning:") {
			color.New(color.FgYellow).Println(problem)
		} else {
			color.New(color.FgHiRed).Println(problem)
		}
	}

	switch {
	case runErr != nil:
		color.New(color.FgHiRed).Printf("error: %v\n", runErr)
	case len(result.Problems) == 0:
		color.New(color.FgGreen).Println("Catalog is clean")
	default:
		color.New(color.FgYellow).Printf("%d problems found\n", len(result.Problems))
	}
}

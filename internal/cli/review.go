package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"quiz-review-service/internal/app"
	"quiz-review-service/internal/config"
	"quiz-review-service/internal/infra/github"
	"quiz-review-service/internal/infra/local"
	"quiz-review-service/internal/infra/memory"
	"quiz-review-service/internal/infra/remote"
	"github.com/spf13/cobra"
)

// NewReviewCmd builds the interactive review session command.
func NewReviewCmd(configPath *string) *cobra.Command {
	var reviewer, category, source string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Run an interactive review session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if source == "" {
				source = cfg.Source.Path
			}
			if reviewer == "" || category == "" || source == "" {
				return fmt.Errorf("reviewer, category, and source are required")
			}
			return runReview(cmd, cfg, reviewer, category, source)
		},
	}

	cmd.Flags().StringVar(&reviewer, "reviewer", "", "reviewer name")
	cmd.Flags().StringVar(&category, "category", "", "question category to review")
	cmd.Flags().StringVar(&source, "source", "", "question file path or repository URL")
	return cmd
}

func runReview(cmd *cobra.Command, cfg config.Config, reviewer, category, source string) error {
	ctx := cmd.Context()

	store, err := local.NewStore(cfg.Storage.Dir)
	if err != nil {
		return err
	}
	cacheTTL := config.TTLDuration(cfg.Source.CacheTTL, 10*time.Minute)
	questions := memory.NewQuestionCache(github.NewLoader(), cacheTTL)
	syncer := remote.NewClient(cfg.Sync.Endpoint, cfg.Sync.Enabled)

	engine := app.NewEngine(questions, store, syncer, reviewer, category, source)
	if err := engine.Load(ctx); err != nil {
		return err
	}
	defer engine.WaitSync()

	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())

	if engine.Index() > 0 {
		fmt.Fprintf(out, "Resuming at question %d of %d\n", engine.Index()+1, engine.Total())
	}

	for {
		question := engine.Question()
		fmt.Fprintf(out, "\n[%d/%d] %s\n", engine.Index()+1, engine.Total(), question.Question)
		for i, choice := range engine.Choices() {
			fmt.Fprintf(out, "  %d) %s\n", i+1, choice.Text)
		}

		idx, err := readChoice(out, in, len(engine.Choices()))
		if err != nil {
			return err
		}
		if err := engine.Select(idx); err != nil {
			return err
		}

		rec, err := engine.Submit(ctx)
		if err != nil {
			return err
		}
		if rec.IsCorrect {
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Incorrect. The correct answer was: %s\n", rec.CorrectAnswer)
		}

		fmt.Fprint(out, "Comment (enter to skip): ")
		comment := ""
		if in.Scan() {
			comment = in.Text()
		}

		if engine.IsLast() {
			summary, err := engine.Complete(ctx, comment)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nReview complete! Score: %d/%d (%.2f%%)\n",
				summary.Correct, summary.Total, summary.Accuracy)
			return nil
		}
		if err := engine.Next(ctx, comment); err != nil {
			return err
		}
	}
}

func readChoice(out io.Writer, in *bufio.Scanner, max int) (int, error) {
	for {
		fmt.Fprintf(out, "Your answer [1-%d]: ", max)
		if !in.Scan() {
			return 0, fmt.Errorf("input closed")
		}
		n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err == nil && n >= 1 && n <= max {
			return n - 1, nil
		}
		fmt.Fprintln(out, "Please enter a valid choice number.")
	}
}

package cli

import (
	"fmt"
	"io"
	"sort"

	"quiz-review-service/internal/domain"
	"quiz-review-service/internal/infra/local"
	"github.com/spf13/cobra"
)

// NewStatsCmd prints accuracy statistics from the local result store.
func NewStatsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show review statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := local.NewStore(cfg.Storage.Dir)
			if err != nil {
				return err
			}
			stats, err := store.Statistics()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total: %d  Correct: %d  Incorrect: %d  Accuracy: %.2f%%\n",
				stats.Total, stats.Correct, stats.Incorrect, stats.Accuracy)
			printGroup(out, "By category", stats.ByCategory)
			printGroup(out, "By reviewer", stats.ByReviewer)
			printGroup(out, "By question set", stats.ByQuestionSet)
			return nil
		},
	}
}

func printGroup(out io.Writer, title string, group map[string]domain.StatBucket) {
	if len(group) == 0 {
		return
	}
	keys := make([]string, 0, len(group))
	for key := range group {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(out, "%s:\n", title)
	for _, key := range keys {
		bucket := group[key]
		fmt.Fprintf(out, "  %-20s %d/%d (%.2f%%)\n", key, bucket.Correct, bucket.Total, bucket.Accuracy)
	}
}

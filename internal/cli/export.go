package cli

import (
	"fmt"

	"quiz-review-service/internal/infra/local"
	"github.com/spf13/cobra"
)

// NewExportCmd dumps the local result store to a timestamp-suffixed file.
func NewExportCmd(configPath *string) *cobra.Command {
	var format, outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export local review results as JSON or CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := local.NewStore(cfg.Storage.Dir)
			if err != nil {
				return err
			}
			path, err := store.ExportFile(outDir, format)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "export format: json or csv")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write the export into")
	return cmd
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"db-corrector/core/config"
	"db-corrector/core/logger"
	"db-corrector/feature/correction"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// inspectCmd compares the configured tables across both databases.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Compare the schema of the configured tables",
	Long: `Inspects every configured table on the reference and target databases and
prints the columns of each side, whether the key column exists and which
reference columns are missing in the target.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		l, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer l.Sync()

		specs, err := resolveTables(cfg, tableFlags)
		if err != nil {
			return err
		}

		svc := correction.NewService(correction.Options{
			Reference: cfg.Reference,
			Target:    cfg.Target,
			Tables:    specs,
		}, l)

		schema, err := svc.Schema(cmd.Context())
		if err != nil {
			return err
		}

		for _, ts := range schema {
			switch {
			case ts.Error != "":
				l.Error("Table inspection failed", zap.String("table", ts.Table), zap.String("error", ts.Error))
			case !ts.KeyInReference || !ts.KeyInTarget:
				l.Warn("Key column missing", zap.String("table", ts.Table), zap.String("key_column", ts.KeyColumn),
					zap.Bool("reference", ts.KeyInReference), zap.Bool("target", ts.KeyInTarget))
			case len(ts.MissingInTarget) > 0:
				l.Warn("Target table lacks reference columns", zap.String("table", ts.Table),
					zap.Strings("columns", ts.MissingInTarget))
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(schema)
	},
}

func init() {
	inspectCmd.Flags().StringArrayVar(&tableFlags, "table", nil, "Table to inspect as table=key_column (repeatable, overrides configuration)")
	RootCmd.AddCommand(inspectCmd)
}

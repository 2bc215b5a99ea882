package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/wage-ledger/internal/ledger"
	"github.com/ginjaninja78/wage-ledger/pkg/utils"
)

var (
	scaffoldTemplates []string
	scaffoldForce     bool
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage ledger template assets",
}

// templateScaffoldCmd writes blank template assets holding the month
// headings, row labels and column widths of each layout. Existing assets
// are kept unless --force is given, so hand-formatted templates survive.
var templateScaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Create blank template assets in templates_dir",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseTemplates(scaffoldTemplates)
		if err != nil {
			return err
		}
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		for _, id := range ids {
			path := filepath.Join(cfg.TemplatesDir, id.FileName())
			if utils.FileExists(path) && !scaffoldForce {
				logger.Info("Keeping existing template %s", path)
				continue
			}
			plan, _ := ledger.PlanFor(id)
			if err := ledger.Scaffold(plan, path); err != nil {
				return fmt.Errorf("failed to scaffold %s: %w", id, err)
			}
			fmt.Printf("Created %s\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.AddCommand(templateScaffoldCmd)

	templateScaffoldCmd.Flags().StringSliceVarP(&scaffoldTemplates, "template", "t", nil, "Layouts to scaffold (default: all)")
	templateScaffoldCmd.Flags().BoolVar(&scaffoldForce, "force", false, "Overwrite existing template assets")
}

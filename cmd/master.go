package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/wage-ledger/internal/master"
)

var masterFile string

var masterCmd = &cobra.Command{
	Use:   "master",
	Short: "Manage the employee master",
}

// masterSyncCmd replaces the stored employee master with the master workbook.
var masterSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Load the employee master workbook (DBGenzaiX / DBUkeoiX sheets)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		path := masterFile
		if path == "" {
			path = cfg.MasterFile
		}
		if path == "" {
			return fmt.Errorf("no master workbook: set master_file or pass --file")
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := master.Sync(cmd.Context(), path, st, logger)
		if err != nil {
			return err
		}
		fmt.Printf("Employee master: %d dispatched, %d contract (%d row(s) skipped, %d duplicate(s))\n",
			res.Dispatched, res.Contract, res.Skipped, res.Duplicates)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(masterCmd)
	masterCmd.AddCommand(masterSyncCmd)

	masterSyncCmd.Flags().StringVar(&masterFile, "file", "", "Master workbook (default: master_file)")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cardbase.GO/config"
	"cardbase.GO/cron/jobs"
)

var sweepCmd = &cobra.Command{
	Use:   "orders:sweep",
	Short: "Cancel overdue PENDING_PAYMENT orders and restore their stock",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			return
		}
		expired, err := jobs.RunOrderExpiration(db)
		if err != nil {
			fmt.Printf("Sweep failed: %v\n", err)
			return
		}
		fmt.Printf("Expired %d order(s)\n", expired)
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

package cmd

import (
	"fmt"
	"time"

	"github.com/facegate/canteen/internal/config"
	"github.com/facegate/canteen/internal/menu"
	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Print the menu currently on offer",
	RunE:  runMenu,
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

func runMenu(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	tz, err := time.LoadLocation(cfg.Report.DisplayTimezone)
	if err != nil {
		return fmt.Errorf("loading timezone %s: %w", cfg.Report.DisplayTimezone, err)
	}

	now := time.Now()
	catalog := menu.NewCatalog(cfg.Menus)
	bucket := menu.BucketFor(now, tz)

	fmt.Printf("Current menu (%s, %s):\n", bucket, now.In(tz).Format("15:04"))
	for _, dish := range catalog.Menu(bucket) {
		fmt.Printf("  - %s\n", dish)
	}
	return nil
}

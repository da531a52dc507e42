package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var usageLimit int

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show the usage log",
	Long:  "Prints the most recent usage log rows, newest first.",
	RunE:  runUsage,
}

func init() {
	usageCmd.Flags().IntVarP(&usageLimit, "limit", "n", 20, "number of rows to show")
	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	usage, err := setupUsageLog(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open usage log: %v\n", err)
		os.Exit(1)
	}
	defer usage.Close()

	records, err := usage.Recent(ctx, usageLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read usage log: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-20s %-14s %-20s %-30s %s\n", "Timestamp", "User", "Action", "Painpoint", "Customer_Profile")
	fmt.Println(strings.Repeat("─", 110))
	for _, r := range records {
		fmt.Printf("%-20s %-14s %-20s %-30s %s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.User,
			r.Action,
			truncate(r.PainPoint, 30),
			truncate(r.CustomerProfile, 30),
		)
	}

	fmt.Printf("\nShowing %d rows (%s backend)\n", len(records), cfg.Usage.Backend)
	return nil
}

// truncate shortens s to n runes for table display.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

package cmd

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/poolq/pool-server/pool"
)

// shutdownCmd represents the shutdown command
var shutdownCmd = &cobra.Command{
	Use:          "shutdown",
	Short:        "drain a pool, stop its workers and print the aggregated report",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sum := new(pool.Summary)
		err := doJSON(cmd.Context(), http.MethodDelete, "/pools/"+poolName, nil, sum)
		if err != nil {
			return err
		}
		if format == "json" {
			return printJSON(sum)
		}
		printSummary(sum)
		return nil
	},
}

func printSummary(sum *pool.Summary) {
	for _, rec := range sum.Records {
		fmt.Printf("[%d] %s: exit %d\n", rec.Worker, strings.Join(rec.Args, " "), rec.ExitCode)
		for _, line := range rec.Stdout {
			fmt.Printf("[%d] out: %s\n", rec.Worker, line)
		}
		for _, line := range rec.Stderr {
			fmt.Printf("[%d] err: %s\n", rec.Worker, line)
		}
	}
	fmt.Printf("%d job(s), %d error(s)\n", len(sum.Records), sum.Errors)
}

func init() {
	rootCmd.AddCommand(shutdownCmd)
}

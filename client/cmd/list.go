package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/poolq/pool-server/api"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:          "list",
	Short:        "list pools",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		rsp := new(api.ListPoolsResponse)
		err := doJSON(ctx, http.MethodGet, "/pools", nil, rsp)
		if err != nil {
			return err
		}
		if format == "json" {
			return printJSON(rsp)
		}
		for _, p := range rsp.Pools {
			fmt.Printf("%s: %d worker(s), %d queued, %d recorded\n",
				p.Name, p.Workers, p.Queued, p.Recorded)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/poolq/pool-server/api"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:          "get",
	Short:        "get one pool's status",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		rsp := new(api.PoolStatus)
		err := doJSON(ctx, http.MethodGet, "/pools/"+poolName, nil, rsp)
		if err != nil {
			return err
		}
		if format == "json" {
			return printJSON(rsp)
		}
		fmt.Printf("%s: %d worker(s), echo %t, %d queued, %d recorded\n",
			rsp.Name, rsp.Workers, rsp.Echo, rsp.Queued, rsp.Recorded)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}

package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/poolq/pool-server/api"
)

var workers int
var echo bool

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:          "create",
	Short:        "create a pool, replacing any prior pool under the same name",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		rsp := new(api.PoolStatus)
		err := doJSON(ctx, http.MethodPost, "/pools", &api.CreatePoolRequest{
			Name:    poolName,
			Workers: workers,
			Echo:    echo,
		}, rsp)
		if err != nil {
			return err
		}
		return printJSON(rsp)
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().IntVar(&workers, "workers", 0, "number of workers, server default if 0")
	createCmd.Flags().BoolVar(&echo, "echo", false, "echo job output in the server log")
}

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/poolq/pool-server/api"
)

var mode string

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:          "run -- command [args...]",
	Short:        "submit a job to a pool",
	SilenceUsage: true,
	Args:         cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		rsp := new(api.SubmitJobResponse)
		err := doJSON(ctx, http.MethodPost, "/pools/"+poolName+"/jobs", &api.SubmitJobRequest{
			Command: args,
			Mode:    mode,
		}, rsp)
		if err != nil {
			return err
		}
		fmt.Println(rsp.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&mode, "mode", "m", "", "job mode tag, 'seq' for a sequential barrier")
}

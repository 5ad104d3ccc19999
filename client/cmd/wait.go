package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

// waitCmd represents the wait command
var waitCmd = &cobra.Command{
	Use:          "wait",
	Short:        "block until all previously submitted jobs have finished",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// no timeout, wait blocks for as long as the backlog runs
		return doJSON(cmd.Context(), http.MethodPost, "/pools/"+poolName+"/wait", nil, nil)
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
}

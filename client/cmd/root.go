package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/poolq/pool-server/api"
)

var addr string
var poolName string
var format string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "poolctl",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&addr, "address", "a", "localhost:56400", "pool server address")
	rootCmd.PersistentFlags().StringVarP(&poolName, "pool", "p", "default", "pool name")
	rootCmd.PersistentFlags().StringVar(&format, "format", "", "print format, '' or 'json'")
}

func doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	url := addr + path
	if !strings.Contains(addr, "://") {
		url = "http://" + url
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	rsp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()
	if rsp.StatusCode >= 300 {
		e := new(api.Error)
		if err := json.NewDecoder(rsp.Body).Decode(e); err == nil && e.Error != "" {
			return errors.New(e.Error)
		}
		return fmt.Errorf("unexpected status %q", rsp.Status)
	}
	if out != nil {
		return json.NewDecoder(rsp.Body).Decode(out)
	}
	return nil
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

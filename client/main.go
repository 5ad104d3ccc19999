package main

import "github.com/poolq/pool-server/client/cmd"

func main() {
	cmd.Execute()
}

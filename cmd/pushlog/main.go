package main

import (
	"fmt"
	"os"

	"pushlog.dev/pushlog/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cli.NewRootCmd(version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "abort: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"log"
	"os"

	"github.com/goldenrun/goldenrun/cli"
)

// Version information, set by goreleaser via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	c := cli.New()
	c.SetVersion(version, commit, date)
	err := c.Run(os.Args)
	if err != nil {
		if msg := err.Error(); msg != "" {
			log.Print(msg)
		}
		os.Exit(cli.ExitCode(err))
	}
}

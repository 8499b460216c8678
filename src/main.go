package main

import (
	"os"

	"AirlineSentiment/src/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

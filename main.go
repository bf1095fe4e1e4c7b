package main

import (
	"os"

	"github.com/bhanmrinal/cf-project/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

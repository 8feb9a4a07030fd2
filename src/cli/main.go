package main

import (
	"os"

	"github.com/vidaislive/forksync/src/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}

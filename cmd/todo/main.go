package main

import (
	"os"

	"github.com/idilsaglam/todonotes/internal/cli"
	"github.com/idilsaglam/todonotes/internal/ui"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		ui.Fail(os.Stderr, err.Error())
		os.Exit(1)
	}
}

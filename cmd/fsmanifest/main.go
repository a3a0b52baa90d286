package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/fsmanifest/internal/cli"
	"github.com/arthur-debert/fsmanifest/pkg/errors"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, cli.MsgErrorFormat, err)
		os.Exit(errors.ExitCode(err))
	}
}

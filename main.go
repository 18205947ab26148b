package main

import (
	"fmt"
	"os"

	"github.com/bennypowers/lighthouse-ci-action/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the lighthouse-report command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}

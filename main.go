package main

import (
	"os"

	"github.com/temirov/coursesync/cmd/cli"
)

// main runs the coursesync command-line application. Errors are reported by the command runner.
func main() {
	os.Exit(cli.ExitCode(cli.Execute()))
}

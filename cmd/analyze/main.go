// dnshealth analyze CLI entrypoint - delegates to cli.NewAnalyzeCommand.
package main

import (
	"fmt"
	"os"

	"github.com/sudo-tiz/dnshealth-go/internal/cli"
)

func main() {
	cmd := cli.NewAnalyzeCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

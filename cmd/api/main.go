// dnshealth API server entrypoint - delegates to cli.NewServerCommand.
package main

import (
	"fmt"
	"os"

	"github.com/sudo-tiz/dnshealth-go/internal/cli"
)

func main() {
	cmd := cli.NewServerCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

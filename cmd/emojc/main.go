package main

import (
	"os"

	"github.com/funvibe/emojc/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stderr))
}

package main

import (
	"os"

	"github.com/narrate-dev/narrate/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}

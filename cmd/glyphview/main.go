package main

import (
	"os"

	"github.com/phanxgames/glyphscape/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

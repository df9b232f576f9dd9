package main

import (
	"context"
	"os"

	"webgenie/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/sceneforge/engine/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sceneforge:", err)
		os.Exit(1)
	}
}

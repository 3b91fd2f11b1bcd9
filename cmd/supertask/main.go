package main

import (
	"os"

	"github.com/Balama2520/smart-mini-task-manager/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Stdout, os.Stderr, os.Args[1:]))
}

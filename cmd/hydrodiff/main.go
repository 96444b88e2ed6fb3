package main

import (
	"os"

	"github.com/sprite-ai/hydrodiff/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

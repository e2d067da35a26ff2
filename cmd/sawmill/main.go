package main

import (
	"os"

	"github.com/dshills/sawmill/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}

package main

import (
	"os"

	"github.com/akostiuk/zoewatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

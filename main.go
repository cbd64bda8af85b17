package main

import (
	"os"

	"github.com/vendora/sellerctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

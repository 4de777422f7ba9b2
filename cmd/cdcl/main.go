package main

import (
	"fmt"
	"os"

	"github.com/c-cube/cdcl/cmd/cdcl/root"
)

func main() {
	if err := root.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"
)

func main() {
	cmd, err := newRootCommand(nil, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

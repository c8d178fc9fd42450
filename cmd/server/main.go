// Package main implements the entry point for the scry-study server, which
// schedules flashcard reviews and runs study sessions over HTTP.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

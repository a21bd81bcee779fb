package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/echoogrow/dashboard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/planit-app/planit/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "planit: %v\n", err)
		os.Exit(1)
	}
}

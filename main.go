package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/flowmark/flowmark/cmd/root"
)

func main() {
	err := root.Execute(context.Background(), os.Stdin, os.Stdout, os.Stderr, os.Args[1:]...)
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var usageErr *root.UsageError
	if errors.As(err, &usageErr) {
		os.Exit(1)
	}
	os.Exit(2)
}

// Command enhance renders images through the enhancement pipeline without a window.
package main

import (
	"errors"
	"fmt"
	"os"

	"image-enhancer/internal/core"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps the error taxonomy to process status codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidParameter):
		return 2
	case errors.Is(err, core.ErrInvalidSource):
		return 3
	default:
		return 1
	}
}

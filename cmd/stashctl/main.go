// Command stashctl is the operator CLI: it mints dev tokens, drives tracked
// item transitions outside the API and bumps cache tags by hand.
package main

import (
	"fmt"
	"os"
)

func main() {
	a := newApp()
	err := newRootCmd(a).Execute()
	if closeErr := a.close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

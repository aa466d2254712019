// Package main is the yaani command: an Ansible dynamic inventory backed by
// NetBox.
//
//	yaani --list
//	yaani --host sw1
//	yaani check --verbose
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// main package for the axegrind command-line tool
// Package main is the entry point for the axegrind CLI.
package main

import "axegrind.dev/pkg/axegrind/cmd"

func main() {
	cmd.Execute()
}

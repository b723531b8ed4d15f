// Package main is the entry point for the mutscore CLI.
package main

import "gooze.dev/pkg/mutscore/cmd"

func main() {
	cmd.Execute()
}

// Package main is the entry point for the ytree CLI tool.
package main

import (
	"github.com/yangdev/ytree/internal/cmd"
)

func main() {
	cmd.Execute()
}

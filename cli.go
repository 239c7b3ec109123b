//go:build cli
// +build cli

package main

import (
	"cardbase.GO/cmd"
	"cardbase.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}

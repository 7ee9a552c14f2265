// Package main provides the foodgramctl administration tool.
package main

import "github.com/foodgramapp/foodgram-server/cmd/foodgramctl/commands"

func main() {
	commands.Execute()
}

package main

import "github.com/strrl/llmchat/cmd/llmchat/commands"

func main() {
	commands.Execute()
}

package main

import "ttsbridge/cmd/cli/command"

func main() {
	command.Execute()
}

package main

import "github.com/Ubaid-developer/keta-chain/cmd/commands"

func main() {
	commands.Execute()
}

package main

import "github.com/mcoot/kingdom-bot/internal/cli"

func main() {
	cli.Execute()
}

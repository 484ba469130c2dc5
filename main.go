package main

import "github.com/Tiliavir/timew-bot/cmd"

func main() {
	cmd.Execute()
}

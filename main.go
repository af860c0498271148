package main

import "mangadventure/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/emperance/statify/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/kozaktomas/fras/cmd"

func main() {
	cmd.Execute()
}

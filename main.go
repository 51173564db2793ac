package main

import "github.com/kozaktomas/marathon-booth/cmd"

func main() {
	cmd.Execute()
}

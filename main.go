package main

import "github.com/georgepearse/github-metrics/cmd"

func main() {
	cmd.Execute()
}

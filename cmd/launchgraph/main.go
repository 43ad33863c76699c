package main

import "launchgraph/internal/cli"

func main() {
	cli.Execute()
}

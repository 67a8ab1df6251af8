package main

import "taskgraph/cmd"

func main() {
	cmd.Execute()
}

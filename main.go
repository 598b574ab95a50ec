package main

import "github.com/notargets/gaptooth/cmd"

func main() {
	cmd.Execute()
}

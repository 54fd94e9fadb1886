package main

import "github.com/lepinkainen/shelfsearch/cmd"

var execute = cmd.Execute

func main() {
	execute()
}

package main

import (
	"github.com/sw33tLie/metascope/cmd"
)

func main() {
	cmd.Execute()
}

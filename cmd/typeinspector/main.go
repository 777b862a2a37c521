package main

import (
	"os"
	"typeinspector/internal/ui/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}

package main

import (
	"os"

	"lattice/internal/cliapp"
)

func main() {
	os.Exit(cliapp.Run(os.Args[1:]))
}

package main

import (
	"os"

	"auth_harness/presentation/terminal"
)

func main() {
	os.Exit(terminal.Execute())
}

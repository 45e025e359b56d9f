package main

import (
	"os"

	"github.com/jason-riddle/archive-go/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}

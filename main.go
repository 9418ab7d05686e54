package main

import (
	"context"
	"os"

	"github.com/thenoetrevino/sitebook/cmd"
)

func main() {
	os.Exit(cmd.Execute(context.Background(), os.Args[1:]))
}

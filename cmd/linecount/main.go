package main

import (
	"os"

	"github.com/swdee/go-linecount/cmd/linecount/app"
)

func main() {
	if err := app.NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

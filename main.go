package main

import (
	"os"

	"github.com/exiledrp/exiled-panel/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

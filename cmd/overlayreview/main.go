package main

import (
	"errors"
	"os"

	"github.com/WSG23/overlayreview/cmd/overlayreview/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		if errors.Is(err, commands.ErrExportBlocked) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

package main

import (
	"os"

	"github.com/sarkarn/parkinglotmgmt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

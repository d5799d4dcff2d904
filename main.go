package main

import (
	"os"

	"github.com/ethDreamer/json-rpc-snoop/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

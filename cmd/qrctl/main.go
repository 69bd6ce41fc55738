package main

import (
	"os"

	"qrattendance/cmd/qrctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

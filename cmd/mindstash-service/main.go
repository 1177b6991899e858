package main

import (
	"os"

	"github.com/mindstash/mindstash/captureservice"
)

func main() {
	if err := captureservice.Run(); err != nil {
		os.Exit(1)
	}
}

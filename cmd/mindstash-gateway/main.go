package main

import (
	"os"

	"github.com/mindstash/mindstash/gatewayservice"
)

func main() {
	if err := gatewayservice.Run(); err != nil {
		os.Exit(1)
	}
}

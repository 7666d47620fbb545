package main

import (
	"github.com/wheelvend/wheelvend/cmd"
	"github.com/wheelvend/wheelvend/pkg/logger"
)

var version = "0.1.0"

func main() {
	if err := cmd.Execute(version); err != nil {
		logger.Fatalf("Error: %v", err)
	}
}

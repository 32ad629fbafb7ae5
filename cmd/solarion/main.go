package main

import (
	"github.com/andrescamacho/solarion-go/internal/adapters/cli"
)

func main() {
	cli.Execute()
}

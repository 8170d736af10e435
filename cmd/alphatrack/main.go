package main

import "github.com/alphatrack/alphatrack/internal/cli"

func main() {
	cli.Execute()
}

package main

import (
	"reviewbot/internal/cmd"
)

func main() {
	cmd.Run()
}

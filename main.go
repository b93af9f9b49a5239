package main

import "irrigation-engine/internal/cli"

func main() {
	cli.Execute()
}

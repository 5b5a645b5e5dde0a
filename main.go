package main

import "github.com/corvid/aria/internal/cli"

func main() {
	cli.Execute()
}

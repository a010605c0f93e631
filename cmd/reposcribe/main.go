package main

import "github.com/reposcribe/reposcribe-cli/internal/cli"

func main() {
	cli.Execute()
}

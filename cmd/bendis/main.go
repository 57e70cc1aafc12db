package main

import "bendis/internal/cli"

func main() {
	cli.Execute()
}

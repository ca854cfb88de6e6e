package main

import "postcard/internal/cli"

func main() {
	cli.Main()
}

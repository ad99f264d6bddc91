package main

import "github.com/slyguy/settings/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/revisehub/revisehub/internal/cli"

func main() {
	cli.Execute()
}

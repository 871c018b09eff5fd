package main

import "github.com/inkbound/numberbook/cmd/numberbook/cmd"

func main() {
	cmd.Execute()
}

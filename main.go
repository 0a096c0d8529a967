package main

import "github.com/chrisdamba/bagsim/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/papapumpkin/starchart/cmd"

func main() {
	cmd.Execute()
}

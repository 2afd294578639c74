package main

import "github.com/openjus/balcao/cmd"

func main() {
	cmd.Execute()
}

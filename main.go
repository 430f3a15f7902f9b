package main

import "okchat/cmd"

func main() {
	cmd.Execute()
}

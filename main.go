package main

import "cycle-count/cmd"

func main() {
	cmd.Execute()
}

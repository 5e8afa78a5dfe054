package main

import "sofie/cmd"

func main() {
	cmd.Execute()
}

package main

import "edaqa/cmd"

func main() {
	cmd.Execute()
}

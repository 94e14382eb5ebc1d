package main

import "hht-term/cmd"

func main() {
	cmd.Execute()
}

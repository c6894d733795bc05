package main

import "github.com/dev-shimada/regscan/cmd"

func main() {
	cmd.Execute()
}

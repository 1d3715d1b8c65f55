package main

import "svcman/internal/cmd"

func main() {
	cmd.Execute()
}

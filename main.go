package main

import "github.com/twiced-technology-gmbh/eisen/cmd"

func main() {
	cmd.Execute()
}

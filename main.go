package main

import "github.com/twiced-technology-gmbh/dayplan/cmd"

func main() {
	cmd.Execute()
}

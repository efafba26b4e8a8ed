package main

import "github.com/notargets/gofem2d/cmd"

func main() {
	cmd.Execute()
}

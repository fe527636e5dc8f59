package main

import "github.com/javanhut/ots-go/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/naka-gawa/github-constellation/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/naka-gawa/pr-portfolio/cmd"

func main() {
	cmd.Execute()
}

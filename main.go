package main

import "github.com/heritage-moments/album-studio/cmd"

func main() {
	cmd.Execute()
}

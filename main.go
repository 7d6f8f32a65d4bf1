package main

import "github.com/mj1618/aerospace-layouts/cmd"

func main() {
	cmd.Execute()
}

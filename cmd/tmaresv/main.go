package main

import "github.com/example/tma-autoreserve/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/openml/openml-go/cmd/openml/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/stegsift/stegsift/cmd/stegsift"

func main() { stegsift.Execute() }

package main

import "github.com/partmesh/dimm/cmd"

func main() {
	cmd.Execute()
}

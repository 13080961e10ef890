package main

import "github.com/skillstage/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}

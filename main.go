package main

import "github.com/wundergraph/gqlstatic/cmd"

func main() {
	cmd.Execute()
}

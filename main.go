package main

import "github.com/cdmartin/metainf/cmd"

func main() {
	cmd.Execute()
}

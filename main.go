package main

import "github.com/theirongolddev/cashplan/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/theirongolddev/fincompass/cmd"

func main() {
	cmd.Execute()
}

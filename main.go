package main

import "github.com/KaramelBytes/driftdash/cmd"

func main() {
	cmd.Execute()
}

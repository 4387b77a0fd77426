package main

import "github.com/KaramelBytes/datapipe-cli/cmd"

func main() {
	cmd.Execute()
}

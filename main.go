package main

import "adlauncher/cmd"

func main() {
	cmd.Execute()
}

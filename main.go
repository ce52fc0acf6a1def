package main

import "rulesync/cmd"

func main() {
	cmd.Execute()
}

package main

import "db-corrector/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/lepinkainen/cinemabot/cmd"

var execute = cmd.Execute

func main() {
	execute()
}

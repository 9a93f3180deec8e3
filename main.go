package main

import "github.com/jsphweid/rstabber/cmd"

func main() {
	cmd.Execute()
}

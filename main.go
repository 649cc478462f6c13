package main

import "github.com/danielbowman/calspread/cmd"

func main() {
	cmd.Execute()
}

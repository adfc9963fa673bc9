package main

import "github.com/ukvlib/ukv/cmd"

func main() {
	cmd.Execute()
}

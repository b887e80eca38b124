package main

import "github.com/goliatone/go-formbuilder/cmd/formbuilder/cli"

func main() {
	cli.InitAndExecute()
}

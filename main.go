package main

import "github.com/deploymenttheory/go-satatarget/cmd"

func main() {
	cmd.Execute()
}

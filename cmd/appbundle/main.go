package main

import "github.com/oshokin/appbundle/cmd/appbundle/cmd"

func main() {
	cmd.Execute()
}

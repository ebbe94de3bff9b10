package main

import "github.com/soundslate/bundle-pipeline/cmd/bundle-pipeline/cmd"

func main() {
	cmd.Execute()
}

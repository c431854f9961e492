package main

import "github.com/nekonora/xcodebuild/internal/cli"

func main() {
	cli.Execute()
}

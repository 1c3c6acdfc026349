package main

import "github.com/devicelab-dev/pom-runner/pkg/cli"

func main() {
	cli.Execute()
}

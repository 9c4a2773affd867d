package main

import "github.com/withgalaxy/adapter-static/pkg/cli"

func main() {
	cli.Execute()
}

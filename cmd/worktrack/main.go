package main

import "worktrack/internal/cli"

func main() {
	cli.Execute()
}

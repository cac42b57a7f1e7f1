package main

import "github.com/mongobridge/sql-to-mongo/cmd/sql-to-mongo/cli"

func main() {
	cli.Execute()
}

package main

import "strings-sorter/internal/cli"

func main() {
	cli.Execute()
}

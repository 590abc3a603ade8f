package main

import "github.com/kcaldas/condenser/cmd/cli"

func main() {
	cli.Execute()
}

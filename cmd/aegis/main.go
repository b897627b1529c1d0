package main

import "github.com/aegisops/aegis/internal/cli"

func main() {
	cli.Execute()
}

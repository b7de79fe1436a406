package main

import (
	"os"
	"petcoin/cli"
	"petcoin/mail"
)

func main() {
	defer mail.AlertIfErr()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

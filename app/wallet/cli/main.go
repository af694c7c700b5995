package main

import "github.com/ardanlabs/tokenledger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}

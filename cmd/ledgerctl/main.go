// Command ledgerctl administers the wallet ledger from the shell.
package main

import "purse/cmd/ledgerctl/commands"

func main() {
	commands.Execute()
}

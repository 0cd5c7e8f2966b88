// Command ldapwiredump is a thin CLI shim over the ldapwire library: it
// encodes, decodes, and round-trips the wire forms this module implements,
// so every core package is reachable from outside its own test suite.
package main

import (
	"fmt"
	"os"

	"github.com/oba-ldap/ldapwire/cmd/ldapwiredump/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ldapwiredump: %v\n", err)
		os.Exit(1)
	}
}

// Command memocachectl inspects and clears memoized entries in the shared
// redis backend.
//
//	memocachectl keys github.com/acme/users.Lookup
//	memocachectl get 'github.com/acme/users.Lookup__{"args":["u1"],"kwargs":{}}'
//	memocachectl clear github.com/acme/users.Lookup
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

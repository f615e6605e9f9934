// Command chatctl talks to a running chat server: it joins dialogs from the
// terminal, lists chatrooms, searches the archive and inspects the store.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Command nrlsh builds norm-ranged LSH indexes over synthetic or stored
// datasets and reports recall against the work each probe performs.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

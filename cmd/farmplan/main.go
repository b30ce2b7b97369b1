// Command farmplan lists the recipe library and quotes and plans recipes
// against a node, printing the advancedFarm call that would run them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(dialSimulator).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

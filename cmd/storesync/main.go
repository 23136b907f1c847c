// Command storesync runs selector binding scenarios against an in-memory
// store and reports what each binding rendered.
package main

import (
	"os"

	"github.com/go-drift/storesync/cmd/storesync/cmd"
)

func main() {
	os.Exit(cmd.Execute(os.Args[1:]))
}

// Home planner CLI: sign in to the dashboard server and view the household
// dashboard from the command line.
//
// Usage:
//
//	planner login --server http://localhost:8080
//	planner dashboard --window daily
//	planner watch --api http://localhost:8000 --interval 30s
//	planner admin attempts --limit 20
package main

import (
	"fmt"
	"os"

	"github.com/homeplanner/homeplanner/cmd/planner/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

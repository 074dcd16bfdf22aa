// prybar — capability broker CLI: runtime compatibility doctor, filter
// policy validation, and audit chain verification.
package main

import "github.com/prybar-dev/prybar/internal/cli"

func main() {
	cli.Execute()
}

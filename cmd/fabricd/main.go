// Command fabricd is the single binary for this node: it serves the DHT
// node and HTTP façade, and doubles as the operator CLI for identity,
// document, and DHT maintenance commands.
package main

import (
	"os"

	"github.com/guarantor-network/fabric/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args))
}

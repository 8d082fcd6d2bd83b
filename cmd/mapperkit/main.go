// Command mapperkit validates, describes and runs mapper statement files.
package main

import (
	"os"

	"github.com/roach88/mapperkit/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

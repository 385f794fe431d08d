package main

import (
	"os"

	"github.com/jwulff/voicememo/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

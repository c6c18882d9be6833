// filedrop - upload files to a filedrop server, browse them, or run the server
package main

import (
	"os"

	"github.com/filedrop/filedrop/internal/cli"
	"github.com/filedrop/filedrop/internal/version"
)

// Version information
var (
	Version   = "v0.1.0-dev"
	BuildTime = "unknown"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

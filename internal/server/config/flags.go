package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/labbook/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-p int      HTTP port
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-u string   upload directory for local file storage
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-p", "-d", "-s", "-u"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.IntVar(&config.Port, "p", config.Port, "port to run server on")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.UploadDir, "u", config.UploadDir, "local upload directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

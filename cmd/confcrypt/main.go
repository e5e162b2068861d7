// Command confcrypt manages encrypted configuration secrets and shows the
// merged configuration a service would see.
//
//	confcrypt keygen
//	confcrypt encrypt conf/prod-secrets.yaml            # writes conf/prod-secrets.yaml.enc
//	confcrypt decrypt conf/prod-secrets.yaml.enc -o -   # prints plaintext
//	confcrypt dump --env prod --prefix APP --list-key server.hosts
package main

import (
	"os"

	"github.com/MKhiriev/go-layered-config/internal/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	log := logger.NewLogger("confcrypt")

	if err := run(os.Args[1:], os.Stdout, log); err != nil {
		log.Fatal().Err(err).Msg("confcrypt failed")
	}
}

// Command alumnictl runs maintenance tasks against the alumni store without
// going through the HTTP API.
package main

import (
	"os"

	"github.com/yigit/alumnidesk/internal/pkg/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

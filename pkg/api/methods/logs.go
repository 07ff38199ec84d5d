package methods

import (
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models/requests"
	"github.com/rs/zerolog/log"
)

func HandleLogsDebug(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received logs debug request")
	return env.Service.LogsDebug(), nil
}

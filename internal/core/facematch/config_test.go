package facematch

import "ballotgate/internal/platform/config"

func configRoot() config.Conf { return config.New().Prefix("MATCH_") }

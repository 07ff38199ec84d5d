package config

import "time"

var AppVersion = "DEVELOPMENT"

const (
	AppName           = "rfidhost"
	ReadingsDbFile    = "readings.db"
	LogFile           = "rfidhost.log"
	PidFile           = "rfidhost.pid"
	CfgFile           = "config.toml"
	ApiRequestTimeout = 30 * time.Second
)

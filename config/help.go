package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `GeoPulse - geofence tracking engine

Usage:
  geopulse -mode=<tracker|store> [-config-path=config.yaml]

Modes:
  tracker   consume location samples, detect geofence transitions, push state to the render surface
  store     serve the geofence store API backed by Postgres

Options:
  -config-path   path to the YAML config file (default: config.yaml)
  -help          show this message
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}

// PrintConfig prints the non-secret part of the configuration.
func PrintConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	fmt.Printf("mode=%s log=%s device=%s notify=%s store=%s mqtt=%s topic=%s\n",
		cfg.Mode, cfg.Log.Level, cfg.Tracker.DeviceID, cfg.Tracker.NotifyMode,
		cfg.Store.URL, cfg.MQTT.Broker, cfg.MQTT.Topic)
}

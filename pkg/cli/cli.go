// RFID Reader Host
// Copyright (c) 2026 Little Endian Engineering.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of RFID Reader Host.
//
// RFID Reader Host is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RFID Reader Host is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RFID Reader Host.  If not, see <http://www.gnu.org/licenses/>.

// Package cli implements the one-shot client flags of the rfidhost
// binary. Each flag maps to a single API call against the running
// service and prints the JSON result to stdout.
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/client"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/config"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Flags struct {
	Ports      *bool
	Connect    *string
	Disconnect *bool
	Send       *string
	Live       *string
	Export     *string
	Next       *bool
	API        *string
	Version    *bool
	ConfigDir  *string
}

// SetupFlags defines the common CLI flags. Add any custom flags before
// running Pre.
func SetupFlags() *Flags {
	return &Flags{
		Ports: flag.Bool(
			"ports",
			false,
			"list available serial ports",
		),
		Connect: flag.String(
			"connect",
			"",
			"connect to the reader (empty port picks the first USB serial device)",
		),
		Disconnect: flag.Bool(
			"disconnect",
			false,
			"close the reader session",
		),
		Send: flag.String(
			"send",
			"",
			"send a raw command to the reader and print the reply",
		),
		Live: flag.String(
			"live",
			"",
			"control live polling (start|stop)",
		),
		Export: flag.String(
			"export",
			"",
			"export the last range result to a CSV file",
		),
		Next: flag.Bool(
			"next",
			false,
			"wait for the next readings update and print it",
		),
		API: flag.String(
			"api",
			"",
			"send method and params to API and print response",
		),
		Version: flag.Bool(
			"version",
			false,
			"print version and exit",
		),
		ConfigDir: flag.String(
			"config",
			"",
			"use config file from this directory",
		),
	}
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// Pre runs flag parsing and actions any immediate flags that don't
// require environment setup. Add any custom flags before running this.
func (f *Flags) Pre() {
	flag.Parse()

	if *f.Version {
		_, _ = fmt.Printf("%s v%s (%s)\n", config.AppName, config.AppVersion, runtime.GOOS)
		os.Exit(0)
	}

	if *f.ConfigDir != "" {
		err := os.Setenv(config.CfgEnv, filepath.Join(*f.ConfigDir, config.CfgFile))
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error setting config path: %v\n", err)
			os.Exit(1)
		}
	}
}

// ClientMode reports whether any one-shot client flag was passed, in
// which case the binary talks to a running service instead of becoming
// one.
func (f *Flags) ClientMode() bool {
	return *f.Ports || *f.Disconnect || *f.Next ||
		isFlagPassed("connect") || isFlagPassed("send") ||
		isFlagPassed("live") || isFlagPassed("export") || isFlagPassed("api")
}

func call(cfg *config.Instance, method, params string) {
	resp, err := client.LocalClient(context.Background(), cfg, method, params)
	if err != nil {
		log.Error().Err(err).Str("method", method).Msg("error calling API")
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	_, _ = fmt.Println(resp)
	os.Exit(0)
}

func marshalParams(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error encoding params: %v\n", err)
		os.Exit(1)
	}
	return string(data)
}

// Post actions all remaining common flags that require the environment
// to be set up. Exits the process when a one-shot flag was handled.
func (f *Flags) Post(cfg *config.Instance) {
	switch {
	case *f.Ports:
		call(cfg, models.MethodPorts, "")
	case isFlagPassed("connect"):
		call(cfg, models.MethodConnect, marshalParams(models.ConnectParams{Port: *f.Connect}))
	case *f.Disconnect:
		call(cfg, models.MethodDisconnect, "")
	case isFlagPassed("send"):
		if *f.Send == "" {
			_, _ = fmt.Fprint(os.Stderr, "Error: send flag requires a command\n")
			os.Exit(1)
		}
		call(cfg, models.MethodReaderSend, marshalParams(models.SendParams{Command: *f.Send}))
	case isFlagPassed("live"):
		switch *f.Live {
		case "start":
			call(cfg, models.MethodLiveStart, "")
		case "stop":
			call(cfg, models.MethodLiveStop, "")
		default:
			_, _ = fmt.Fprintf(os.Stderr, "Error: unknown live argument: %s\n", *f.Live)
			os.Exit(1)
		}
	case isFlagPassed("export"):
		call(cfg, models.MethodReadingsExport, marshalParams(models.ExportParams{Path: *f.Export}))
	case *f.Next:
		resp, err := client.WaitNotification(
			context.Background(), 0,
			cfg, models.NotificationReadingsUpdated,
		)
		if err != nil {
			log.Error().Err(err).Msg("error waiting for notification")
			_, _ = fmt.Fprintf(os.Stderr, "Error waiting for readings: %v\n", err)
			os.Exit(1)
		}
		_, _ = fmt.Println(resp)
		os.Exit(0)
	case isFlagPassed("api"):
		if *f.API == "" {
			_, _ = fmt.Fprint(os.Stderr, "Error: api flag requires a value\n")
			os.Exit(1)
		}

		ps := strings.SplitN(*f.API, ":", 2)
		method := ps[0]
		params := ""
		if len(ps) > 1 {
			params = ps[1]
		}

		call(cfg, method, params)
	}
}

// Setup initializes logging and the user config. Returns a user config
// object.
//
//nolint:gocritic // config struct copied for immutability
func Setup(defaultConfig config.Values, writers []io.Writer) *config.Instance {
	err := helpers.InitLogging(helpers.LogDir(), writers)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(helpers.ConfigDir(), defaultConfig)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return cfg
}

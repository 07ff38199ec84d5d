//go:build linux || darwin

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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/cli"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/config"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/helpers"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service/daemon"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags()

	serviceCmd := flag.String(
		"service",
		"",
		"manage the host service (exec|start|stop|restart|status)",
	)

	flags.Pre()

	// log to stderr as well when running as the foreground service
	var logWriters []io.Writer
	if !flags.ClientMode() && (*serviceCmd == "" || *serviceCmd == "exec") {
		logWriters = []io.Writer{helpers.ConsoleWriter()}
	}

	cfg := cli.Setup(config.BaseDefaults, logWriters)

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	svc, err := daemon.NewService(daemon.ServiceArgs{
		Entry: func() (func() error, <-chan struct{}, error) {
			return daemon.Start(cfg, runtime.GOOS)
		},
	})
	if err != nil {
		return fmt.Errorf("error creating service: %w", err)
	}

	err = svc.ServiceHandler(serviceCmd)
	if err != nil {
		return err
	}

	flags.Post(cfg)

	// no flags given: run the service in the foreground
	foreground := "exec"
	return svc.ServiceHandler(&foreground)
}

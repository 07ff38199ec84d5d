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

package helpers

import (
	"os"
	"path/filepath"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/config"
	"github.com/adrg/xdg"
)

// ConfigDir returns the directory holding the config file. The path in
// RFIDHOST_CONFIG overrides the platform default when set.
func ConfigDir() string {
	if env := os.Getenv(config.CfgEnv); env != "" {
		return filepath.Dir(env)
	}
	return filepath.Join(xdg.ConfigHome, config.AppName)
}

// DataDir returns the directory for databases and exports.
func DataDir() string {
	return filepath.Join(xdg.DataHome, config.AppName)
}

// LogDir returns the directory for rotated log files.
func LogDir() string {
	return filepath.Join(xdg.StateHome, config.AppName)
}

// TempDir returns the directory for the PID file and other transient
// state. Callers create it on demand.
func TempDir() string {
	return filepath.Join(os.TempDir(), config.AppName)
}

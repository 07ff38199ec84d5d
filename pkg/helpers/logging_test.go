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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggingCreatesLogDir(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")

	require.NoError(t, InitLogging(logDir, nil))

	info, err := os.Stat(logDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestInitLoggingWritesToExtraWriters(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitLogging(t.TempDir(), []io.Writer{&buf}))

	log.Info().Msg("logging smoke test")

	assert.Contains(t, buf.String(), "logging smoke test")
}

func TestConsoleWriter(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, ConsoleWriter())
}

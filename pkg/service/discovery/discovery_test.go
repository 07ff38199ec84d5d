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

package discovery

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		platformID string
	}{
		{"linux platform", "linux"},
		{"darwin platform", "darwin"},
		{"windows platform", "windows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := New(nil, tt.platformID)

			assert.NotNil(t, svc)
			assert.Equal(t, tt.platformID, svc.platformID)
		})
	}
}

func TestServiceType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "_rfidhost._tcp", ServiceType)
}

func TestStopIdempotent(t *testing.T) {
	t.Parallel()

	svc := New(nil, "test")

	// Stop should be safe to call multiple times even when not started
	svc.Stop()
	svc.Stop()
	svc.Stop()

	// No panic means success
	assert.Nil(t, svc.server)
}

func TestFilterInterfaces(t *testing.T) {
	t.Parallel()

	ifaces := []net.Interface{
		{Name: "lo", Flags: net.FlagUp | net.FlagLoopback | net.FlagMulticast},
		{Name: "eth0", Flags: net.FlagUp | net.FlagBroadcast | net.FlagMulticast},
		{Name: "eth1", Flags: net.FlagBroadcast | net.FlagMulticast},
		{Name: "docker0", Flags: net.FlagUp | net.FlagBroadcast | net.FlagMulticast},
		{Name: "tun0", Flags: net.FlagUp | net.FlagPointToPoint},
		{Name: "wlan0", Flags: net.FlagUp | net.FlagBroadcast | net.FlagMulticast},
	}

	got := filterInterfaces(ifaces)

	names := make([]string, len(got))
	for i, iface := range got {
		names[i] = iface.Name
	}
	assert.Equal(t, []string{"eth0", "wlan0"}, names)
}

func TestIsVirtualInterface(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		iface string
		want  bool
	}{
		{"docker bridge", "docker0", true},
		{"custom bridge", "br-1a2b3c4d", true},
		{"veth pair", "veth01ab23", true},
		{"wireguard", "wg0", true},
		{"uppercase prefix", "WG0", true},
		{"ethernet", "eth0", false},
		{"wireless", "wlan0", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, isVirtualInterface(tt.iface))
		})
	}
}

func TestResolveInstanceName_ConfiguredNameWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	contents := "config_schema = 1\n\n[service]\nname = \"bench-reader\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.CfgFile), []byte(contents), 0o600))

	cfg, err := config.NewConfig(dir, config.BaseDefaults)
	require.NoError(t, err)

	svc := New(cfg, "linux")
	name, err := svc.resolveInstanceName()
	require.NoError(t, err)
	assert.Equal(t, "bench-reader", name)
}

func TestResolveInstanceName_DefaultsToHostname(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	hostname, err := os.Hostname()
	require.NoError(t, err)

	svc := New(cfg, "linux")
	name, err := svc.resolveInstanceName()
	require.NoError(t, err)
	assert.Equal(t, hostname, name)
}

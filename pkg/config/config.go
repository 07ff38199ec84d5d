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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/helpers/syncutil"
	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "RFIDHOST_CONFIG"
	AppEnv        = "RFIDHOST_APP"
)

type Values struct {
	Readers      Readers `toml:"readers,omitempty"`
	Live         Live    `toml:"live,omitempty"`
	Service      Service `toml:"service,omitempty"`
	History      History `toml:"history,omitempty"`
	MQTT         MQTT    `toml:"mqtt,omitempty"`
	ConfigSchema int     `toml:"config_schema"`
	DebugLogging bool    `toml:"debug_logging"`
}

// Readers holds the serial link and command timing settings. The timing
// values are empirically tuned for observed device latency, not derived
// from a device specification, so they are configurable rather than fixed.
type Readers struct {
	Port               string `toml:"port,omitempty"`
	BaudRate           int    `toml:"baud_rate,omitempty"`
	WakeSettleMs       int    `toml:"wake_settle_ms,omitempty"`
	QuietPeriodMs      int    `toml:"quiet_period_ms,omitempty"`
	RangeQuietPeriodMs int    `toml:"range_quiet_period_ms,omitempty"`
	HardTimeoutMs      int    `toml:"hard_timeout_ms,omitempty"`
	RangeHardTimeoutMs int    `toml:"range_hard_timeout_ms,omitempty"`
	FastHardTimeoutMs  int    `toml:"fast_hard_timeout_ms,omitempty"`
	RetryAttempts      int    `toml:"retry_attempts,omitempty"`
	RetryBackoffMs     int    `toml:"retry_backoff_ms,omitempty"`
}

type Live struct {
	PollIntervalMs   int `toml:"poll_interval_ms,omitempty"`
	FailureThreshold int `toml:"failure_threshold,omitempty"`
}

type Service struct {
	Name     string `toml:"name,omitempty"`
	DeviceID string `toml:"device_id,omitempty"`
	APIPort  int    `toml:"api_port,omitempty"`
}

type History struct {
	RetentionDays int  `toml:"retention_days,omitempty"`
	Enabled       bool `toml:"enabled"`
}

type MQTT struct {
	Broker  string   `toml:"broker,omitempty"`
	Topic   string   `toml:"topic,omitempty"`
	Methods []string `toml:"methods,omitempty,multiline"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Readers: Readers{
		BaudRate:           115200,
		WakeSettleMs:       220,
		QuietPeriodMs:      600,
		RangeQuietPeriodMs: 1500,
		HardTimeoutMs:      20000,
		RangeHardTimeoutMs: 30000,
		FastHardTimeoutMs:  10000,
		RetryAttempts:      3,
		RetryBackoffMs:     500,
	},
	Live: Live{
		PollIntervalMs:   5000,
		FailureThreshold: 3,
	},
	Service: Service{
		APIPort: 7519,
	},
	History: History{
		RetentionDays: 90,
		Enabled:       true,
	},
	MQTT: MQTT{
		Topic: "rfidhost/notifications",
	},
}

type Instance struct {
	appPath  string
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		mu:       syncutil.RWMutex{},
		appPath:  os.Getenv(AppEnv),
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	if _, err := os.Stat(c.cfgPath); err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	// This ensures fields not present in the file retain their default values.
	newVals := c.defaults
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	c.vals = newVals

	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	// set current schema version
	c.vals.ConfigSchema = SchemaVersion

	// generate a device id if one doesn't exist
	if c.vals.Service.DeviceID == "" {
		newID := uuid.New().String()
		c.vals.Service.DeviceID = newID
		log.Info().Msgf("generated new device id: %s", newID)
	}

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// AppPath returns the data directory override from the environment, if set.
func (c *Instance) AppPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.appPath
}

func (c *Instance) ConfigPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfgPath
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func (c *Instance) ReaderPort() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Readers.Port
}

func (c *Instance) SetReaderPort(port string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Readers.Port = port
}

func (c *Instance) BaudRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Readers.BaudRate
}

func (c *Instance) WakeSettle() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Readers.WakeSettleMs) * time.Millisecond
}

func (c *Instance) QuietPeriod() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Readers.QuietPeriodMs) * time.Millisecond
}

func (c *Instance) RangeQuietPeriod() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Readers.RangeQuietPeriodMs) * time.Millisecond
}

func (c *Instance) HardTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Readers.HardTimeoutMs) * time.Millisecond
}

func (c *Instance) RangeHardTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Readers.RangeHardTimeoutMs) * time.Millisecond
}

func (c *Instance) FastHardTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Readers.FastHardTimeoutMs) * time.Millisecond
}

func (c *Instance) RetryAttempts() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Readers.RetryAttempts
}

func (c *Instance) RetryBackoff() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Readers.RetryBackoffMs) * time.Millisecond
}

func (c *Instance) LivePollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Live.PollIntervalMs) * time.Millisecond
}

func (c *Instance) LiveFailureThreshold() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Live.FailureThreshold
}

func (c *Instance) APIPort() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.APIPort
}

func (c *Instance) DeviceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.DeviceID
}

// ServiceName returns the user-chosen name advertised over mDNS, or empty
// if none was configured.
func (c *Instance) ServiceName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.Name
}

func (c *Instance) HistoryEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.History.Enabled
}

func (c *Instance) HistoryRetentionDays() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.History.RetentionDays
}

func (c *Instance) MQTTBroker() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.MQTT.Broker
}

func (c *Instance) MQTTTopic() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.MQTT.Topic
}

func (c *Instance) MQTTMethods() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	methods := make([]string, len(c.vals.MQTT.Methods))
	copy(methods, c.vals.MQTT.Methods)
	return methods
}

// LiveValues returns a copy of the live section for settings reads.
func (c *Instance) LiveValues() Live {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Live
}

// ReaderValues returns a copy of the readers section for settings reads.
func (c *Instance) ReaderValues() Readers {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Readers
}

// SetReaderValues replaces the readers section wholesale.
//
//nolint:gocritic // struct copied on purpose
func (c *Instance) SetReaderValues(vals Readers) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Readers = vals
}

// SetLiveValues replaces the live section wholesale.
func (c *Instance) SetLiveValues(vals Live) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Live = vals
}

// HistoryValues returns a copy of the history section for settings reads.
func (c *Instance) HistoryValues() History {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.History
}

// SetHistoryValues replaces the history section wholesale.
func (c *Instance) SetHistoryValues(vals History) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.History = vals
}

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

package daemon

import (
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/config"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/database/readingsdb"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service/broker"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service/discovery"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service/notifications"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service/publishers"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/service/state"
	"github.com/rs/zerolog/log"
)

// cleanupHistoryOnStartup applies the retention policy once per boot so a
// long-running daemon does not grow the readings store unbounded.
func cleanupHistoryOnStartup(cfg *config.Instance, db *readingsdb.ReadingsDB) {
	if !cfg.HistoryEnabled() {
		return
	}

	rowsDeleted, cleanupErr := db.CleanupReadings(cfg.HistoryRetentionDays())
	switch {
	case cleanupErr != nil:
		log.Warn().Err(cleanupErr).Msg("error cleaning up readings history")
	case rowsDeleted > 0:
		log.Info().Int64("rows", rowsDeleted).Msg("cleaned up expired readings history")
	default:
		log.Debug().Msg("no expired readings history to clean up")
	}
}

// Start boots every subsystem: state, notification fan-out, history
// store, controller, API server, discovery and the optional MQTT
// publisher. It returns a stop function and a channel closed once
// shutdown has completed.
func Start(cfg *config.Instance, platformID string) (func() error, <-chan struct{}, error) {
	st, ns := state.NewState()

	notifBroker := broker.NewBroker(st.GetContext(), ns)
	notifBroker.Start()

	db, err := readingsdb.OpenReadingsDB(st.GetContext())
	if err != nil {
		log.Error().Err(err).Msg("error opening readings database, continuing without history")
		db = nil
	} else {
		cleanupHistoryOnStartup(cfg, db)
	}

	svc := service.New(cfg, st, db)

	disc := discovery.New(cfg, platformID)
	if discErr := disc.Start(); discErr != nil {
		log.Warn().Err(discErr).Msg("error starting discovery, continuing without it")
	}

	apiNotifications, _ := notifBroker.Subscribe(100)
	go api.Start(cfg, st, svc, apiNotifications)

	var mqttPub *publishers.MQTTPublisher
	if cfg.MQTTBroker() != "" {
		mqttNotifications, _ := notifBroker.Subscribe(100)
		mqttPub = publishers.NewMQTTPublisher(cfg.MQTTBroker(), cfg.MQTTTopic(), cfg.MQTTMethods())
		if mqttErr := mqttPub.Start(mqttNotifications); mqttErr != nil {
			log.Warn().Err(mqttErr).Msg("error starting MQTT publisher, continuing without it")
			mqttPub = nil
		}
	}

	notifications.Running(st.Notifications)
	log.Info().Int("api_port", cfg.APIPort()).Msg("service started")

	done := make(chan struct{})
	go func() {
		<-st.GetContext().Done()
		log.Info().Msg("service shutting down")

		svc.Shutdown()
		disc.Stop()
		if mqttPub != nil {
			mqttPub.Stop()
		}
		if db != nil {
			if closeErr := db.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("error closing readings database")
			}
		}
		notifBroker.Stop()
		close(done)
	}()

	return func() error {
		st.StopService()
		<-done
		return nil
	}, done, nil
}

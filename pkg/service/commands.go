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

package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/api/models"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/database"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/link"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/parse"
	"github.com/LittleEndianEngineering/RFID-Reader-Github/pkg/reader/protocol"
	"github.com/rs/zerolog/log"
)

// deviceVariables is the fixed batch order for device settings reads
// and writes.
var deviceVariables = []string{
	"ssid", "password", "rfidOnTimeMs", "periodicIntervalMs", "longPressMs",
}

// Send runs one raw command exchange. An empty response is not an error
// here; the outcome's blank text and end reason tell the story.
func (s *Service) Send(command string) (models.CommandResponse, error) {
	d, err := s.dispatcher()
	if err != nil {
		return models.CommandResponse{}, err
	}

	out, err := d.Send(command)
	if err != nil && !errors.Is(err, protocol.ErrEmptyResponse) {
		s.noteLinkError(err)
		return models.CommandResponse{}, fmt.Errorf("send %q: %w", command, err)
	}
	return outcomeResponse(out), nil
}

// RangeQuery asks the device for stored readings between two epoch
// seconds and parses the reply. A result with at least one reading
// becomes the current result set, is persisted and broadcast; an empty
// reply leaves the previous set in place.
func (s *Service) RangeQuery(startEpoch, endEpoch int64) (models.RangeResponse, error) {
	d, err := s.dispatcher()
	if err != nil {
		return models.RangeResponse{}, err
	}

	out, err := d.Send(protocol.RangeCommand(startEpoch, endEpoch))
	if err != nil && !errors.Is(err, protocol.ErrEmptyResponse) {
		s.noteLinkError(err)
		return models.RangeResponse{}, fmt.Errorf("range query: %w", err)
	}

	readings := parse.ParseReadings(out.Text)
	summary := parse.SummaryLines(out.Text)
	outcome := outcomeResponse(out)

	if len(readings) > 0 {
		s.st.SetLastResult(database.ReadingSourceRange, readings, summary, outcome)
		s.persistReadings(database.ReadingSourceRange, readings)
	} else {
		readings = []parse.Reading{}
	}

	return models.RangeResponse{
		Readings: readings,
		Summary:  summary,
		Outcome:  outcome,
	}, nil
}

// PollLiveWindow runs one live-mode range query over the given window.
// Any response text at all counts as the device being healthy, but only
// parsed readings replace the displayed set.
func (s *Service) PollLiveWindow(start, end time.Time) (bool, error) {
	d, err := s.dispatcher()
	if err != nil {
		return false, err
	}

	out, err := d.Send(protocol.RangeCommand(start.Unix(), end.Unix()))
	if err != nil {
		if errors.Is(err, protocol.ErrEmptyResponse) {
			return false, nil
		}
		s.noteLinkError(err)
		return false, fmt.Errorf("live poll: %w", err)
	}

	if readings := parse.ParseReadings(out.Text); len(readings) > 0 {
		s.st.SetLastResult(database.ReadingSourceLive, readings,
			parse.SummaryLines(out.Text), outcomeResponse(out))
		s.persistReadings(database.ReadingSourceLive, readings)
	}
	return true, nil
}

// DeviceSettings reads the device-side variables one get at a time.
// Variables the device does not answer for are omitted rather than
// failing the batch.
func (s *Service) DeviceSettings() (models.DeviceSettingsResponse, error) {
	d, err := s.dispatcher()
	if err != nil {
		return models.DeviceSettingsResponse{}, err
	}

	var resp models.DeviceSettingsResponse
	for _, name := range deviceVariables {
		out, getErr := d.Get(name)
		if getErr != nil && !errors.Is(getErr, protocol.ErrEmptyResponse) {
			s.noteLinkError(getErr)
			return resp, fmt.Errorf("get %s: %w", name, getErr)
		}

		startMarker, endMarker := protocol.GetVarMarkers(name)
		value, ok := parse.MarkerValue(out.Text, startMarker, endMarker)
		if !ok {
			log.Debug().Str("variable", name).Msg("device gave no value for variable")
			continue
		}

		v := value
		switch name {
		case "ssid":
			resp.SSID = &v
		case "password":
			resp.Password = &v
		case "rfidOnTimeMs":
			resp.RFIDOnTimeMs = &v
		case "periodicIntervalMs":
			resp.PeriodicIntervalMs = &v
		case "longPressMs":
			resp.LongPressMs = &v
		}
	}
	return resp, nil
}

// UpdateDeviceSettings writes the provided variables in the fixed batch
// order. A write the device rejects is recorded and the batch moves on;
// only a dead link aborts it.
func (s *Service) UpdateDeviceSettings(
	params models.UpdateDeviceSettingsParams,
) (models.DeviceSettingsUpdateResponse, error) {
	d, err := s.dispatcher()
	if err != nil {
		return models.DeviceSettingsUpdateResponse{}, err
	}

	values := make(map[string]string)
	if params.SSID != nil {
		values["ssid"] = *params.SSID
	}
	if params.Password != nil {
		values["password"] = *params.Password
	}
	if params.RFIDOnTimeMs != nil {
		values["rfidOnTimeMs"] = strconv.Itoa(*params.RFIDOnTimeMs)
	}
	if params.PeriodicIntervalMs != nil {
		values["periodicIntervalMs"] = strconv.Itoa(*params.PeriodicIntervalMs)
	}
	if params.LongPressMs != nil {
		values["longPressMs"] = strconv.Itoa(*params.LongPressMs)
	}

	results := make([]models.DeviceSettingResult, 0, len(values))
	for _, name := range deviceVariables {
		value, wanted := values[name]
		if !wanted {
			continue
		}

		result := models.DeviceSettingResult{Name: name}
		out, sendErr := d.Send(protocol.SetCommand(name, value))
		if sendErr != nil && !errors.Is(sendErr, protocol.ErrEmptyResponse) {
			s.noteLinkError(sendErr)
			results = append(results, result)
			if link.IsDisconnectError(sendErr) {
				return models.DeviceSettingsUpdateResponse{Results: results},
					fmt.Errorf("set %s: %w", name, sendErr)
			}
			log.Warn().Err(sendErr).Str("variable", name).Msg("set command failed")
			continue
		}

		if ack, found := parse.FindAck(out.Text); found {
			result.Ack = ack
			result.OK = ack == protocol.AckOK
		}
		results = append(results, result)
	}
	return models.DeviceSettingsUpdateResponse{Results: results}, nil
}

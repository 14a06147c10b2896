// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.

// Package monitors tracks the set of observed (device, port) output
// points and records their signal level after every simulation cycle.
package monitors

import (
	"sort"

	"github.com/gmofishsauce/logisim/internal/devices"
	"github.com/gmofishsauce/logisim/internal/names"
)

// Result is the outcome of MakeMonitor.
type Result int

const (
	NoError Result = iota
	NotOutput
	MonitorPresent
	DeviceAbsent
)

// Key identifies one monitored output point.
type Key struct {
	Device names.ID
	Port   devices.Port
}

// Monitors is the set of observed (device, port) pairs, each with its
// own ordered per-cycle signal history.
type Monitors struct {
	catalog *devices.Catalog
	order   []Key
	history map[Key][]devices.Level
}

// New returns an empty Monitors over catalog.
func New(catalog *devices.Catalog) *Monitors {
	return &Monitors{catalog: catalog, history: make(map[Key][]devices.Level)}
}

// MakeMonitor starts observing (dev, port). currentCycles is the
// number of cycles already run; the new history is prepadded with
// that many BLANKs so every monitor's history stays the same length.
func (m *Monitors) MakeMonitor(dev names.ID, port devices.Port, currentCycles int) Result {
	d := m.catalog.GetDevice(dev)
	if d == nil {
		return DeviceAbsent
	}
	if _, isOutput := d.Outputs[port]; !isOutput {
		return NotOutput
	}
	key := Key{dev, port}
	if _, exists := m.history[key]; exists {
		return MonitorPresent
	}
	hist := make([]devices.Level, currentCycles)
	for i := range hist {
		hist[i] = devices.BLANK
	}
	m.history[key] = hist
	m.order = append(m.order, key)
	return NoError
}

// RemoveMonitor stops observing (dev, port), reporting whether it was
// being monitored.
func (m *Monitors) RemoveMonitor(dev names.ID, port devices.Port) bool {
	key := Key{dev, port}
	if _, ok := m.history[key]; !ok {
		return false
	}
	delete(m.history, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// RecordSignals appends each monitored point's current output level
// to its history.
func (m *Monitors) RecordSignals() {
	for _, key := range m.order {
		level := devices.BLANK
		if d := m.catalog.GetDevice(key.Device); d != nil {
			if l, ok := d.Outputs[key.Port]; ok {
				level = l
			}
		}
		m.history[key] = append(m.history[key], level)
	}
}

// ResetMonitors clears every history, keeping the monitored set.
func (m *Monitors) ResetMonitors() {
	for k := range m.history {
		m.history[k] = m.history[k][:0]
	}
}

// History returns the recorded levels for (dev, port) and whether it
// is currently monitored.
func (m *Monitors) History(dev names.ID, port devices.Port) ([]devices.Level, bool) {
	h, ok := m.history[Key{dev, port}]
	return h, ok
}

// Monitored returns the monitored keys in the order they were added.
func (m *Monitors) Monitored() []Key {
	return append([]Key(nil), m.order...)
}

// SignalNames returns the sorted display names of every monitored and
// every non-monitored nameable output point in the network.
func (m *Monitors) SignalNames(tbl *names.Table) (monitored, unmonitored []string) {
	isMonitored := make(map[Key]bool, len(m.order))
	for _, k := range m.order {
		isMonitored[k] = true
	}
	for _, id := range m.catalog.Order() {
		d := m.catalog.GetDevice(id)
		for port := range d.Outputs {
			name := signalName(tbl, id, port)
			if isMonitored[Key{id, port}] {
				monitored = append(monitored, name)
			} else {
				unmonitored = append(unmonitored, name)
			}
		}
	}
	sort.Strings(monitored)
	sort.Strings(unmonitored)
	return monitored, unmonitored
}

func signalName(tbl *names.Table, dev names.ID, port devices.Port) string {
	devName, _ := tbl.Resolve(dev)
	if port == devices.NoPort {
		return devName
	}
	portName, _ := tbl.Resolve(port)
	return devName + "." + portName
}

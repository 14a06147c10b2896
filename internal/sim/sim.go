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

// Package sim is the thin driver that runs a successfully parsed
// circuit for a number of cycles, sampling monitors after each one.
package sim

import (
	"fmt"

	"github.com/gmofishsauce/logisim/internal/devices"
	"github.com/gmofishsauce/logisim/internal/monitors"
	"github.com/gmofishsauce/logisim/internal/names"
	"github.com/gmofishsauce/logisim/internal/network"
)

// Driver runs a parsed circuit. It owns no state beyond references to
// the three layers a parse produces and a count of cycles run; switch
// toggles and monitor
// edits are legal at any time between Run calls.
type Driver struct {
	Catalog  *devices.Catalog
	Network  *network.Network
	Monitors *monitors.Monitors

	cyclesRun int
}

// New returns a Driver over an already-wired, already-checked circuit.
func New(catalog *devices.Catalog, net *network.Network, mon *monitors.Monitors) *Driver {
	return &Driver{Catalog: catalog, Network: net, Monitors: mon}
}

// CyclesRun reports how many cycles have elapsed since construction or
// the last Reset, for prepadding monitors added after the fact.
func (d *Driver) CyclesRun() int {
	return d.cyclesRun
}

// Run advances the circuit n cycles, sampling every monitor after
// each one. It stops and returns an error at the first cycle that
// fails to stabilize; cycles completed before the failure still left
// their signal levels and monitor samples in place.
func (d *Driver) Run(n int) error {
	for i := 0; i < n; i++ {
		if !d.Network.ExecuteNetwork() {
			return fmt.Errorf("sim: oscillation detected at cycle %d", d.cyclesRun+1)
		}
		d.Monitors.RecordSignals()
		d.cyclesRun++
	}
	return nil
}

// Reset clears monitor histories and the cycle count and returns
// clocks, signal generators, flip-flops and gates to their
// construction-time state (clock counters, siggen phase, DTYPE
// outputs). Switches keep their current level.
func (d *Driver) Reset() {
	d.Catalog.Reset()
	d.Monitors.ResetMonitors()
	d.cyclesRun = 0
}

// ToggleSwitch sets a SWITCH device's held level between cycles.
func (d *Driver) ToggleSwitch(id names.ID, level devices.Level) bool {
	return d.Catalog.SetSwitch(id, level)
}

// AddMonitor starts observing (dev, port), prepadding its history to
// match every other monitor's length so far.
func (d *Driver) AddMonitor(dev names.ID, port devices.Port) monitors.Result {
	return d.Monitors.MakeMonitor(dev, port, d.cyclesRun)
}

// RemoveMonitor stops observing (dev, port).
func (d *Driver) RemoveMonitor(dev names.ID, port devices.Port) bool {
	return d.Monitors.RemoveMonitor(dev, port)
}

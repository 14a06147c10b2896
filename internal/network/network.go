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

// Package network wires devices together and drives one cycle of
// signal propagation across them, detecting oscillation.
package network

import (
	"github.com/gmofishsauce/logisim/internal/devices"
	"github.com/gmofishsauce/logisim/internal/names"
)

// ConnectionResult is the outcome of MakeConnection.
type ConnectionResult int

const (
	OK ConnectionResult = iota
	DeviceAbsent
	InputConnected
	InputToInput
	PortAbsent
	OutputToOutput
)

// DefaultOscillationLimit is the number of propagation passes tried
// per cycle before giving up and reporting oscillation.
const DefaultOscillationLimit = 20

// Network owns no state of its own beyond a reference to the device
// catalog it connects and propagates signals through; connections
// live on the sink device's Inputs map (see devices.Device).
type Network struct {
	Catalog          *devices.Catalog
	OscillationLimit int
}

// New returns a Network over catalog with the default oscillation
// iteration cap.
func New(catalog *devices.Catalog) *Network {
	return &Network{Catalog: catalog, OscillationLimit: DefaultOscillationLimit}
}

// MakeConnection wires sink's sinkPort input from src's srcPort
// output. The source is referenced by identity only: the network
// never takes ownership of it through the connection.
func (n *Network) MakeConnection(sinkDev names.ID, sinkPort devices.Port, srcDev names.ID, srcPort devices.Port) ConnectionResult {
	sink := n.Catalog.GetDevice(sinkDev)
	src := n.Catalog.GetDevice(srcDev)
	if sink == nil || src == nil {
		return DeviceAbsent
	}

	if _, isSinkOutput := sink.Outputs[sinkPort]; isSinkOutput {
		return OutputToOutput
	}
	existing, isSinkInput := sink.Inputs[sinkPort]
	if !isSinkInput {
		return PortAbsent
	}
	if existing.Connected {
		return InputConnected
	}

	if _, isSrcInput := src.Inputs[srcPort]; isSrcInput {
		return InputToInput
	}
	if _, isSrcOutput := src.Outputs[srcPort]; !isSrcOutput {
		return PortAbsent
	}

	sink.Inputs[sinkPort] = devices.InputSource{Device: srcDev, Port: srcPort, Connected: true}
	return OK
}

// CheckNetwork reports whether every device's every declared input is
// connected.
func (n *Network) CheckNetwork() bool {
	for _, id := range n.Catalog.Order() {
		d := n.Catalog.GetDevice(id)
		for _, src := range d.Inputs {
			if !src.Connected {
				return false
			}
		}
	}
	return true
}

func (n *Network) resolve(dev names.ID, port devices.Port) devices.Level {
	d := n.Catalog.GetDevice(dev)
	if d == nil {
		return devices.LOW
	}
	return d.Outputs[port]
}

// isFreeRunning reports whether a device's output this cycle is a
// pure function of its own internal counter/phase rather than of
// other devices' outputs (CLOCK, SIGGEN) or is simply held (SWITCH).
// ExecuteNetwork updates CLOCK and SIGGEN exactly once per cycle and
// never updates a SWITCH (SetSwitch writes its output directly);
// everything else (gates, XOR, DTYPE) is re-evaluated every
// stabilization pass.
func isFreeRunning(k devices.Kind) bool {
	return k == devices.CLOCK || k == devices.SIGGEN || k == devices.SWITCH
}

func snapshotOutputs(d *devices.Device) map[devices.Port]devices.Level {
	cp := make(map[devices.Port]devices.Level, len(d.Outputs))
	for p, l := range d.Outputs {
		cp[p] = l
	}
	return cp
}

func outputsEqual(a map[devices.Port]devices.Level, d *devices.Device) bool {
	if len(a) != len(d.Outputs) {
		return false
	}
	for p, l := range a {
		if d.Outputs[p] != l {
			return false
		}
	}
	return true
}

// ExecuteNetwork advances the network by one simulation cycle: every
// free-running device (CLOCK, SIGGEN) ticks exactly once, and every
// other device is repeatedly re-evaluated in fixed construction order
// until no output changes (a fixed point), propagating RISING/FALLING
// edges to DTYPE in the same cycle they are produced. It returns false
// if the network fails to stabilize within OscillationLimit passes.
func (n *Network) ExecuteNetwork() bool {
	limit := n.OscillationLimit
	if limit <= 0 {
		limit = DefaultOscillationLimit
	}

	for _, id := range n.Catalog.Order() {
		d := n.Catalog.GetDevice(id)
		if d.Kind == devices.CLOCK || d.Kind == devices.SIGGEN {
			d.Update(n.resolve)
		}
	}

	for pass := 0; pass < limit; pass++ {
		changed := false
		for _, id := range n.Catalog.Order() {
			d := n.Catalog.GetDevice(id)
			if isFreeRunning(d.Kind) {
				continue
			}
			before := snapshotOutputs(d)
			d.Update(n.resolve)
			if !outputsEqual(before, d) {
				changed = true
			}
		}
		if !changed {
			return true
		}
	}
	return false
}

// GetOutputSignal returns the current output level of (dev, port) and
// true, or BLANK and false if there is no such device/port.
func (n *Network) GetOutputSignal(dev names.ID, port devices.Port) (devices.Level, bool) {
	d := n.Catalog.GetDevice(dev)
	if d == nil {
		return devices.BLANK, false
	}
	l, ok := d.Outputs[port]
	if !ok {
		return devices.BLANK, false
	}
	return l, true
}

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

// Package devices implements the device catalog: typed construction
// of gates, flip-flops, clocks, switches and signal generators, and
// the per-kind per-cycle update rule each one follows when the
// network package drives a propagation pass.
package devices

import "github.com/gmofishsauce/logisim/internal/names"

// Kind is a device's type tag.
type Kind int

const (
	AND Kind = iota
	NAND
	OR
	NOR
	XOR
	DTYPE
	CLOCK
	SWITCH
	SIGGEN
)

func (k Kind) String() string {
	switch k {
	case AND:
		return "AND"
	case NAND:
		return "NAND"
	case OR:
		return "OR"
	case NOR:
		return "NOR"
	case XOR:
		return "XOR"
	case DTYPE:
		return "DTYPE"
	case CLOCK:
		return "CLOCK"
	case SWITCH:
		return "SWITCH"
	case SIGGEN:
		return "SIGGEN"
	default:
		return "?"
	}
}

// Level is a signal level. RISING/FALLING are transient, produced only
// during propagation; BLANK marks a monitor sample taken before its
// device produced any output.
type Level int

const (
	LOW Level = iota
	HIGH
	RISING
	FALLING
	BLANK
)

func (l Level) String() string {
	switch l {
	case LOW:
		return "LOW"
	case HIGH:
		return "HIGH"
	case RISING:
		return "RISING"
	case FALLING:
		return "FALLING"
	case BLANK:
		return "BLANK"
	default:
		return "?"
	}
}

// Settled collapses RISING/FALLING to their steady boolean value; a
// combinational input treats an edge as already-settled HIGH or LOW.
func Settled(l Level) bool {
	return l == HIGH || l == RISING
}

// Port names an input or output of a device. Gates/DTYPE use the
// reserved keyword IDs (I1..I16, DATA, CLK, SET, CLEAR, Q, QBAR);
// single-output devices (gates, CLOCK, SWITCH, SIGGEN) use NoPort for
// their one unnamed output.
type Port = names.ID

// NoPort marks the unnamed single output of a gate, CLOCK, SWITCH or
// SIGGEN device.
const NoPort Port = -1

// Qualifier is the optional per-device configuration value that
// follows the device kind in `NAME : KIND <qualifier>`. Exactly one of
// the two forms is meaningful, selected by IsWaveform.
type Qualifier struct {
	IsWaveform bool
	Int        int    // gate input count / clock half-period / switch bit
	Waveform   string // raw SIGGEN digit string
}

// MakeResult is the outcome of MakeDevice.
type MakeResult int

const (
	OK MakeResult = iota
	NoQualifier
	InvalidQualifier
	QualifierPresent
	DevicePresent
)

// InputSource identifies where a device input is wired from. A
// Connected of false means UNCONNECTED.
type InputSource struct {
	Device    names.ID
	Port      Port
	Connected bool
}

// Device is one instance in the network: a typed record with ordered
// input sources, an output-level map, and kind-specific state.
type Device struct {
	ID   names.ID
	Kind Kind

	Inputs  map[Port]InputSource
	Outputs map[Port]Level

	// SWITCH
	SwitchState Level

	// CLOCK
	ClockPeriod  int
	clockCounter int
	clockLevel   Level

	// SIGGEN
	Waveform      string
	waveformPhase int

	// DTYPE
	Q, QBar Level
}

// Resolve reads the current output level of (dev, port); the network
// package supplies this so Device.Update can read its inputs without
// depending on the network's connection bookkeeping.
type Resolve func(dev names.ID, port Port) Level

// Catalog is the flat table of devices, keyed by device ID. Devices
// refer to each other only by ID (an arena+index layout), never by
// direct pointer, so there is no ownership cycle between devices.
type Catalog struct {
	byID map[names.ID]*Device
	// order preserves first-construction order for deterministic
	// iteration during propagation (see network.Network.ExecuteNetwork).
	order []names.ID
}

// NewCatalog returns an empty device catalog.
func NewCatalog() *Catalog {
	return &Catalog{byID: make(map[names.ID]*Device)}
}

// declaredInputs returns the fixed input-port set for kind, given the
// qualifier used (only gates vary the count).
func declaredInputs(kind Kind, gateInputCount int) []Port {
	switch kind {
	case AND, NAND, OR, NOR:
		ports := make([]Port, gateInputCount)
		for i := 0; i < gateInputCount; i++ {
			ports[i] = names.I1 + names.ID(i)
		}
		return ports
	case XOR:
		return []Port{names.I1, names.I2}
	case DTYPE:
		return []Port{names.DATA, names.CLK, names.SET, names.CLEAR}
	default: // CLOCK, SWITCH, SIGGEN
		return nil
	}
}

// MakeDevice constructs and inserts a device of the given kind. On any
// result other than OK the catalog is unchanged.
func (c *Catalog) MakeDevice(id names.ID, kind Kind, q *Qualifier) MakeResult {
	if _, exists := c.byID[id]; exists {
		return DevicePresent
	}

	gateInputCount := 0

	switch kind {
	case AND, NAND, OR, NOR:
		if q == nil || q.IsWaveform {
			return NoQualifier
		}
		if q.Int < 1 || q.Int > 16 {
			return InvalidQualifier
		}
		gateInputCount = q.Int

	case XOR, DTYPE:
		if q != nil {
			return QualifierPresent
		}

	case CLOCK:
		if q == nil || q.IsWaveform {
			return NoQualifier
		}
		if q.Int < 1 {
			return InvalidQualifier
		}

	case SWITCH:
		if q == nil || q.IsWaveform {
			return NoQualifier
		}
		if q.Int != 0 && q.Int != 1 {
			return InvalidQualifier
		}

	case SIGGEN:
		if q == nil || !q.IsWaveform {
			return NoQualifier
		}
		if q.Waveform == "" {
			return NoQualifier
		}
		for _, r := range q.Waveform {
			if r != '0' && r != '1' {
				return InvalidQualifier
			}
		}
	}

	d := &Device{
		ID:      id,
		Kind:    kind,
		Inputs:  make(map[Port]InputSource),
		Outputs: make(map[Port]Level),
	}
	for _, p := range declaredInputs(kind, gateInputCount) {
		d.Inputs[p] = InputSource{Connected: false}
	}

	switch kind {
	case SWITCH:
		if q.Int == 1 {
			d.SwitchState = HIGH
		} else {
			d.SwitchState = LOW
		}
		d.Outputs[NoPort] = d.SwitchState
	case CLOCK:
		d.ClockPeriod = q.Int
		d.clockLevel = LOW
		d.Outputs[NoPort] = LOW
	case SIGGEN:
		d.Waveform = q.Waveform
		d.Outputs[NoPort] = bitLevel(d.Waveform[0])
	case DTYPE:
		d.Q, d.QBar = LOW, HIGH
		d.Outputs[names.Q] = LOW
		d.Outputs[names.QBAR] = HIGH
	default: // gates
		d.Outputs[NoPort] = LOW
	}

	c.byID[id] = d
	c.order = append(c.order, id)
	return OK
}

func bitLevel(b byte) Level {
	if b == '1' {
		return HIGH
	}
	return LOW
}

// GetDevice returns the device with id, or nil if there is none.
func (c *Catalog) GetDevice(id names.ID) *Device {
	return c.byID[id]
}

// Order returns device IDs in first-construction order.
func (c *Catalog) Order() []names.ID {
	return c.order
}

// FindDevices returns the IDs of devices of the given kind. If kinds
// is empty every device ID is returned.
func (c *Catalog) FindDevices(kinds ...Kind) []names.ID {
	if len(kinds) == 0 {
		out := make([]names.ID, len(c.order))
		copy(out, c.order)
		return out
	}
	want := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []names.ID
	for _, id := range c.order {
		if want[c.byID[id].Kind] {
			out = append(out, id)
		}
	}
	return out
}

// SetSwitch sets a SWITCH device's output level. It returns false if
// id does not name a SWITCH device.
func (c *Catalog) SetSwitch(id names.ID, level Level) bool {
	d := c.byID[id]
	if d == nil || d.Kind != SWITCH {
		return false
	}
	d.SwitchState = level
	d.Outputs[NoPort] = level
	return true
}

// Reset returns every clock, signal generator, flip-flop and gate to
// its construction-time state: clock counters and SIGGEN phase to
// zero, DTYPE Q to LOW, clock and gate outputs to LOW. SWITCH devices
// are not touched and keep their current level.
func (c *Catalog) Reset() {
	for _, id := range c.order {
		d := c.byID[id]
		switch d.Kind {
		case CLOCK:
			d.clockCounter = 0
			d.clockLevel = LOW
			d.Outputs[NoPort] = LOW
		case SIGGEN:
			d.waveformPhase = 0
			d.Outputs[NoPort] = bitLevel(d.Waveform[0])
		case DTYPE:
			d.Q, d.QBar = LOW, HIGH
			d.Outputs[names.Q] = LOW
			d.Outputs[names.QBAR] = HIGH
		case AND, NAND, OR, NOR, XOR:
			d.Outputs[NoPort] = LOW
		}
	}
}

// Update recomputes d's output(s) for one propagation pass, given a
// way to resolve the current output level of any (device, port).
func (d *Device) Update(resolve Resolve) {
	switch d.Kind {
	case AND, NAND:
		d.Outputs[NoPort] = boolLevel(allHigh(d.Inputs, resolve) != (d.Kind == NAND))

	case OR, NOR:
		d.Outputs[NoPort] = boolLevel(anyHigh(d.Inputs, resolve) != (d.Kind == NOR))

	case XOR:
		a := inputHigh(d.Inputs[names.I1], resolve)
		b := inputHigh(d.Inputs[names.I2], resolve)
		d.Outputs[NoPort] = boolLevel(a != b)

	case CLOCK:
		d.clockCounter++
		if d.clockCounter >= d.ClockPeriod {
			d.clockCounter = 0
			if d.clockLevel == LOW {
				d.clockLevel = HIGH
				d.Outputs[NoPort] = RISING
			} else {
				d.clockLevel = LOW
				d.Outputs[NoPort] = FALLING
			}
		} else {
			d.Outputs[NoPort] = d.clockLevel
		}

	case SWITCH:
		d.Outputs[NoPort] = d.SwitchState

	case SIGGEN:
		d.waveformPhase++
		idx := d.waveformPhase % len(d.Waveform)
		d.Outputs[NoPort] = bitLevel(d.Waveform[idx])

	case DTYPE:
		clear := inputHigh(d.Inputs[names.CLEAR], resolve)
		set := inputHigh(d.Inputs[names.SET], resolve)
		clk := resolve(d.Inputs[names.CLK].Device, d.Inputs[names.CLK].Port)
		switch {
		case clear:
			d.Q, d.QBar = LOW, HIGH
		case set:
			d.Q, d.QBar = HIGH, LOW
		case clk == RISING:
			if inputHigh(d.Inputs[names.DATA], resolve) {
				d.Q, d.QBar = HIGH, LOW
			} else {
				d.Q, d.QBar = LOW, HIGH
			}
		}
		d.Outputs[names.Q] = d.Q
		d.Outputs[names.QBAR] = d.QBar
	}
}

func inputHigh(src InputSource, resolve Resolve) bool {
	if !src.Connected {
		return false
	}
	return Settled(resolve(src.Device, src.Port))
}

func allHigh(inputs map[Port]InputSource, resolve Resolve) bool {
	for _, src := range inputs {
		if !inputHigh(src, resolve) {
			return false
		}
	}
	return true
}

func anyHigh(inputs map[Port]InputSource, resolve Resolve) bool {
	for _, src := range inputs {
		if inputHigh(src, resolve) {
			return true
		}
	}
	return false
}

func boolLevel(b bool) Level {
	if b {
		return HIGH
	}
	return LOW
}

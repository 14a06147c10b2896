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

// Package parser recognizes the circuit description grammar by
// recursive descent, dispatching to the devices/network/monitors
// packages as each construct is recognized and recovering from faults
// in panic mode so a single pass collects every distinct error.
package parser

import (
	"github.com/gmofishsauce/logisim/internal/devices"
	"github.com/gmofishsauce/logisim/internal/monitors"
	"github.com/gmofishsauce/logisim/internal/names"
	"github.com/gmofishsauce/logisim/internal/network"
	"github.com/gmofishsauce/logisim/internal/scanner"
)

// Parser recognizes one source file and builds the device catalog,
// network, and monitor set it describes.
type Parser struct {
	sc    *scanner.Scanner
	names *names.Table

	Catalog  *devices.Catalog
	Network  *network.Network
	Monitors *monitors.Monitors

	cur    scanner.Symbol
	errors []Error
}

// New returns a Parser reading from sc, interning names into tbl.
func New(sc *scanner.Scanner, tbl *names.Table) *Parser {
	catalog := devices.NewCatalog()
	p := &Parser{
		sc:       sc,
		names:    tbl,
		Catalog:  catalog,
		Network:  network.New(catalog),
		Monitors: monitors.New(catalog),
	}
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.sc.Next()
}

// ResolveName looks up an already-interned identifier by its source
// spelling, without interning it if it has never been seen.
func (p *Parser) ResolveName(s string) (names.ID, bool) {
	return p.names.Query(s)
}

func (p *Parser) addError(kind ErrorKind, message string, sym scanner.Symbol) {
	p.errors = append(p.errors, Error{Kind: kind, Message: message, Sym: sym})
}

// Parse recognizes the whole program: zero or more sections followed
// by END, then validates overall network connectivity. It always runs
// to EOF, collecting every distinct fault rather than stopping at the
// first one.
func (p *Parser) Parse() *Result {
	sawEnd := false

loop:
	for {
		switch {
		case p.cur.Kind == scanner.EOF:
			break loop
		case p.isSectionKeyword(names.DEVICES):
			p.advance()
			p.parseList(p.parseDev)
		case p.isSectionKeyword(names.CONNECT):
			p.advance()
			p.parseList(p.parseCon)
		case p.isSectionKeyword(names.MONITOR):
			p.advance()
			p.parseList(p.parseMonSig)
		case p.isSectionKeyword(names.END):
			p.advance()
			sawEnd = true
			break loop
		default:
			p.addError(NoInitKeyword, "expected DEVICES, CONNECT, MONITOR, or END", p.cur)
			p.recover()
			if p.cur.Kind == scanner.COMMA || p.cur.Kind == scanner.SEMICOLON {
				p.advance()
			}
		}
	}

	if !sawEnd {
		p.addError(NotEnd, "missing END", p.cur)
	} else if p.cur.Kind != scanner.EOF {
		p.addError(NotEnd, "unexpected content after END", p.cur)
	}

	if len(p.errors) == 0 && len(p.Catalog.Order()) == 0 {
		p.addError(EmptyFile, "empty file: no devices, connections, or monitors", p.cur)
	}

	if !p.Network.CheckNetwork() {
		p.addError(NetworkConnectivity, "not every device input is connected", p.cur)
	}

	return &Result{Success: len(p.errors) == 0, Errors: p.errors}
}

func (p *Parser) isSectionKeyword(id names.ID) bool {
	return p.cur.Kind == scanner.KEYWORD && p.cur.ID == id
}

func (p *Parser) isSyncPoint() bool {
	if p.cur.Kind == scanner.EOF {
		return true
	}
	if p.cur.Kind != scanner.KEYWORD {
		return false
	}
	switch p.cur.ID {
	case names.DEVICES, names.CONNECT, names.MONITOR, names.END:
		return true
	}
	return false
}

// recover consumes tokens up to the next COMMA, SEMICOLON, section
// keyword, END, or EOF, implementing the grammar's panic-mode recovery.
func (p *Parser) recover() {
	for p.cur.Kind != scanner.COMMA && p.cur.Kind != scanner.SEMICOLON && !p.isSyncPoint() {
		p.advance()
	}
}

// parseList drives one devlist/conlist/monlist: repeated item, comma
// separated, terminated by a semicolon. If recovery from within item
// lands directly on a section keyword/END/EOF without ever seeing the
// semicolon, a single synthetic "missed semicolon" error is reported.
func (p *Parser) parseList(item func()) {
	for {
		item()
		switch {
		case p.cur.Kind == scanner.COMMA:
			p.advance()
			continue
		case p.cur.Kind == scanner.SEMICOLON:
			p.advance()
			return
		case p.isSyncPoint():
			p.addError(MissedSemicolon, "missing ';'", p.cur)
			return
		default:
			p.addError(NoSemicolon, "expected ',' or ';'", p.cur)
			p.recover()
			switch {
			case p.cur.Kind == scanner.SEMICOLON:
				p.advance()
				return
			case p.cur.Kind == scanner.COMMA:
				p.advance()
				continue
			default:
				// isSyncPoint(): a section keyword, END, or EOF.
				return
			}
		}
	}
}

func isDeviceKeyword(id names.ID) bool {
	switch id {
	case names.AND, names.NAND, names.OR, names.NOR, names.XOR, names.DTYPE, names.CLOCK, names.SWITCH, names.SIGGEN:
		return true
	}
	return false
}

func keywordToKind(id names.ID) devices.Kind {
	switch id {
	case names.AND:
		return devices.AND
	case names.NAND:
		return devices.NAND
	case names.OR:
		return devices.OR
	case names.NOR:
		return devices.NOR
	case names.XOR:
		return devices.XOR
	case names.DTYPE:
		return devices.DTYPE
	case names.CLOCK:
		return devices.CLOCK
	case names.SWITCH:
		return devices.SWITCH
	default:
		return devices.SIGGEN
	}
}

// parseDev recognizes `NAME ":" KEYWORD [NUMBER]` and dispatches to
// Catalog.MakeDevice, translating its result into the parser's
// taxonomy.
func (p *Parser) parseDev() {
	nameSym := p.cur
	if nameSym.Kind != scanner.NAME {
		if nameSym.Kind == scanner.DOT {
			p.addError(UnexpectedDot, "unexpected '.'", nameSym)
		} else {
			p.addError(InvalidName, "expected a device name", nameSym)
		}
		p.recover()
		return
	}
	p.advance()

	if p.cur.Kind != scanner.COLON {
		p.addError(NoColon, "expected ':'", p.cur)
		p.recover()
		return
	}
	p.advance()

	if p.cur.Kind != scanner.KEYWORD || !isDeviceKeyword(p.cur.ID) {
		p.addError(NoDeviceType, "expected a device kind", p.cur)
		p.recover()
		return
	}
	kindSym := p.cur
	kind := keywordToKind(kindSym.ID)
	p.advance()

	var q *devices.Qualifier
	qualSym := kindSym
	if p.cur.Kind == scanner.NUMBER {
		qualSym = p.cur
		if p.cur.Number == scanner.Waveform {
			q = &devices.Qualifier{IsWaveform: true, Waveform: p.cur.Raw}
		} else {
			q = &devices.Qualifier{Int: p.cur.Int}
		}
		p.advance()
	}

	switch p.Catalog.MakeDevice(nameSym.ID, kind, q) {
	case devices.OK:
	case devices.DevicePresent:
		p.addError(RepeatedDevice, "device already declared", nameSym)
	case devices.QualifierPresent:
		p.addError(QualifierPresent, "this device kind takes no qualifier", qualSym)
	case devices.NoQualifier:
		p.addError(missingQualifierKind(kind), missingQualifierMessage(kind), kindSym)
	case devices.InvalidQualifier:
		p.addError(invalidQualifierKind(kind), invalidQualifierMessage(kind), qualSym)
	}
}

func missingQualifierKind(kind devices.Kind) ErrorKind {
	switch kind {
	case devices.CLOCK:
		return ClockPeriodZero
	case devices.SWITCH:
		return NotBit
	case devices.SIGGEN:
		return NoWaveform
	default: // AND, NAND, OR, NOR
		return InvalidRange
	}
}

func missingQualifierMessage(kind devices.Kind) string {
	switch kind {
	case devices.CLOCK:
		return "clock requires a period"
	case devices.SWITCH:
		return "switch requires an initial value"
	case devices.SIGGEN:
		return "signal generator requires a waveform"
	default:
		return "gate requires an input count"
	}
}

func invalidQualifierKind(kind devices.Kind) ErrorKind {
	switch kind {
	case devices.CLOCK:
		return ClockPeriodZero
	case devices.SWITCH:
		return NotBit
	case devices.SIGGEN:
		return NonbinaryWaveform
	default:
		return InvalidRange
	}
}

func invalidQualifierMessage(kind devices.Kind) string {
	switch kind {
	case devices.CLOCK:
		return "clock period must be at least 1"
	case devices.SWITCH:
		return "switch value must be 0 or 1"
	case devices.SIGGEN:
		return "waveform must contain only 0s and 1s"
	default:
		return "gate input count must be between 1 and 16"
	}
}

// sigRef is a parsed `NAME ["." (KEYWORD | NAME)]` reference.
type sigRef struct {
	DeviceSym scanner.Symbol
	PortSym   scanner.Symbol
	HasPort   bool
	Port      devices.Port
}

// anchor returns the token a diagnostic about this sig should point
// at: the port if one was given, else the device name.
func (s sigRef) anchor() scanner.Symbol {
	if s.HasPort {
		return s.PortSym
	}
	return s.DeviceSym
}

// parseSig recognizes `NAME ["." (KEYWORD | NAME)]`.
func (p *Parser) parseSig() (sigRef, bool) {
	if p.cur.Kind != scanner.NAME {
		if p.cur.Kind == scanner.DOT {
			p.addError(UnexpectedDot, "unexpected '.'", p.cur)
		} else {
			p.addError(InvalidName, "expected a signal name", p.cur)
		}
		return sigRef{}, false
	}
	ref := sigRef{DeviceSym: p.cur, Port: devices.NoPort}
	p.advance()

	if p.cur.Kind == scanner.DOT {
		p.advance()
		if p.cur.Kind != scanner.KEYWORD && p.cur.Kind != scanner.NAME {
			p.addError(NoPeriod, "expected a port name after '.'", p.cur)
			return sigRef{}, false
		}
		ref.HasPort = true
		ref.PortSym = p.cur
		ref.Port = p.cur.ID
		p.advance()
	}
	return ref, true
}

// parseCon recognizes `sig ">" sig` and dispatches to connect.
func (p *Parser) parseCon() {
	src, ok := p.parseSig()
	if !ok {
		p.recover()
		return
	}
	if p.cur.Kind != scanner.ARROW {
		p.addError(NoArrow, "expected '>'", p.cur)
		p.recover()
		return
	}
	p.advance()
	sink, ok := p.parseSig()
	if !ok {
		p.recover()
		return
	}
	p.connect(src, sink)
}

// classifyPortError picks a connection-level error kind for a dot-form
// reference to a device of kind that does not have the named port.
// Resolves the open question (spec.md §9) of which enum member a
// malformed port reference produces: DTYPE always reports
// INVALID_PORT_DTYPE; XOR reports INVALID_PORT_XOR whenever any dot
// form is used (its only named ports are the inputs I1/I2); gates report
// PORT_OUT_RANGE for an I-port beyond their declared width and
// NOT_I_PORT for any other dot form; every other single-output kind
// (CLOCK, SWITCH, SIGGEN) has no named ports at all, so a dot form
// against one is not a device/port mismatch but a stray dot, reported
// as the syntactic UNEXPECTED_DOT (matching the original's
// in_signame(), which rejects any dot on these device kinds outright).
func classifyPortError(kind devices.Kind, hasPort bool, port devices.Port) ErrorKind {
	switch kind {
	case devices.DTYPE:
		return InvalidPortDtype
	case devices.XOR:
		if hasPort {
			return InvalidPortXor
		}
		return InvalidPort
	case devices.AND, devices.NAND, devices.OR, devices.NOR:
		if hasPort && names.IsInputPort(port) {
			return PortOutRange
		}
		if hasPort {
			return NotIPort
		}
		return InvalidPort
	default: // CLOCK, SWITCH, SIGGEN
		if hasPort {
			return UnexpectedDot
		}
		return InvalidPort
	}
}

// portErrorMessage returns the diagnostic text to pair with a
// classifyPortError result: UnexpectedDot always reads as a stray dot,
// regardless of which side of the connection or monitor it came from.
func portErrorMessage(kind ErrorKind, fallback string) string {
	if kind == UnexpectedDot {
		return "unexpected '.'"
	}
	return fallback
}

// isUnconnectableSink reports whether kind never has an input port at
// all, so it can never be the sink of a connection (it may still be a
// connection source, or monitored).
func isUnconnectableSink(kind devices.Kind) bool {
	return kind == devices.SWITCH || kind == devices.CLOCK || kind == devices.SIGGEN
}

// connect resolves src and sink against the catalog and wires them,
// translating every way the connection can be rejected into the
// parser's taxonomy.
func (p *Parser) connect(src, sink sigRef) {
	srcDev := p.Catalog.GetDevice(src.DeviceSym.ID)
	if srcDev == nil {
		p.addError(DeviceAbsent, "source device not declared", src.DeviceSym)
		return
	}
	sinkDev := p.Catalog.GetDevice(sink.DeviceSym.ID)
	if sinkDev == nil {
		p.addError(DeviceAbsent, "sink device not declared", sink.DeviceSym)
		return
	}

	if _, isSrcInput := srcDev.Inputs[src.Port]; isSrcInput {
		p.addError(InputToInput, "source names an input port", src.anchor())
		return
	}
	if _, isSrcOutput := srcDev.Outputs[src.Port]; !isSrcOutput {
		kind := classifyPortError(srcDev.Kind, src.HasPort, src.Port)
		p.addError(kind, portErrorMessage(kind, "source does not name a valid output"), src.anchor())
		return
	}

	if isUnconnectableSink(sinkDev.Kind) {
		p.addError(InvalidConnectionSC, "cannot connect to a switch, clock, or signal generator", sink.anchor())
		return
	}

	if _, isSinkOutput := sinkDev.Outputs[sink.Port]; isSinkOutput {
		p.addError(OutputToOutput, "sink names an output port", sink.anchor())
		return
	}
	existing, isSinkInput := sinkDev.Inputs[sink.Port]
	if !isSinkInput {
		kind := classifyPortError(sinkDev.Kind, sink.HasPort, sink.Port)
		p.addError(kind, portErrorMessage(kind, "sink does not name a valid input"), sink.anchor())
		return
	}
	if existing.Connected {
		p.addError(InputConnected, "input already connected", sink.anchor())
		return
	}

	if p.Network.MakeConnection(sink.DeviceSym.ID, sink.Port, src.DeviceSym.ID, src.Port) != network.OK {
		p.addError(InvalidPort, "connection rejected", sink.anchor())
	}
}

// parseMonSig recognizes one MONITOR list entry: a sig naming an
// output point to observe.
func (p *Parser) parseMonSig() {
	sig, ok := p.parseSig()
	if !ok {
		p.recover()
		return
	}
	dev := p.Catalog.GetDevice(sig.DeviceSym.ID)
	if dev == nil {
		p.addError(DeviceAbsent, "device not declared", sig.DeviceSym)
		return
	}
	switch p.Monitors.MakeMonitor(sig.DeviceSym.ID, sig.Port, 0) {
	case monitors.NoError:
	case monitors.MonitorPresent:
		p.addError(RepeatedMonitor, "signal already monitored", sig.anchor())
	case monitors.NotOutput:
		kind := classifyPortError(dev.Kind, sig.HasPort, sig.Port)
		p.addError(kind, portErrorMessage(kind, "not a valid output to monitor"), sig.anchor())
	case monitors.DeviceAbsent:
		p.addError(DeviceAbsent, "device not declared", sig.DeviceSym)
	}
}

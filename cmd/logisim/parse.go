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

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gmofishsauce/logisim/internal/devices"
	"github.com/gmofishsauce/logisim/internal/names"
	"github.com/gmofishsauce/logisim/internal/parser"
	"github.com/gmofishsauce/logisim/internal/scanner"
)

// loaded bundles the artifacts of parsing one circuit description
// file, kept together so a caller can both run the circuit and render
// diagnostics against the original token stream.
type loaded struct {
	path   string
	tbl    *names.Table
	sc     *scanner.Scanner
	p      *parser.Parser
	result *parser.Result
}

func loadFile(path string) (*loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tbl := names.New()
	sc, err := scanner.New(strings.NewReader(string(data)), tbl)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p := parser.New(sc, tbl)
	r := p.Parse()
	return &loaded{path: path, tbl: tbl, sc: sc, p: p, result: r}, nil
}

// resolveSignal parses a "NAME" or "NAME.PORT" reference against an
// already-parsed file's symbol table and device catalog. A failure is
// returned as a *parser.Error so the caller can render it through the
// same Result.Report path as an in-file MONITOR/CONNECT diagnostic,
// rather than a one-off message in a different shape.
func resolveSignal(l *loaded, ref string) (names.ID, devices.Port, *parser.Error) {
	devPart, portPart, hasPort := strings.Cut(ref, ".")
	devID, ok := l.p.ResolveName(devPart)
	if !ok {
		return 0, devices.NoPort, &parser.Error{Kind: parser.DeviceAbsent, Message: fmt.Sprintf("no such device: %s", devPart)}
	}
	dev := l.p.Catalog.GetDevice(devID)
	if dev == nil {
		return 0, devices.NoPort, &parser.Error{Kind: parser.DeviceAbsent, Message: fmt.Sprintf("no such device: %s", devPart)}
	}
	if !hasPort {
		return devID, devices.NoPort, nil
	}
	portID, ok := l.p.ResolveName(portPart)
	if !ok {
		return 0, devices.NoPort, &parser.Error{Kind: parser.InvalidPort, Message: fmt.Sprintf("no such port: %s", portPart)}
	}
	if _, isOutput := dev.Outputs[portID]; !isOutput {
		return 0, devices.NoPort, &parser.Error{Kind: parser.NotIPort, Message: fmt.Sprintf("%s is not an output port of %s", portPart, devPart)}
	}
	return devID, portID, nil
}

// reportSignalError renders a resolveSignal failure through the same
// LINE/caret/Summary format parser.Result.Report produces for faults
// found during the original parse.
func reportSignalError(l *loaded, perr *parser.Error) {
	result := &parser.Result{Success: false, Errors: []parser.Error{*perr}}
	fmt.Print(result.Report(l.sc))
}

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
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/gmofishsauce/logisim/internal/devices"
	"github.com/gmofishsauce/logisim/internal/names"
	"github.com/gmofishsauce/logisim/internal/sim"
)

var savedTermState *term.State

func setupTerminal() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	state, err := term.GetState(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to get terminal state: %v", err)
	}
	savedTermState = state
	if _, err := term.MakeRaw(int(os.Stdin.Fd())); err != nil {
		return fmt.Errorf("failed to set raw mode: %v", err)
	}
	return nil
}

func restoreTerminal() {
	if savedTermState != nil && term.IsTerminal(int(os.Stdin.Fd())) {
		term.Restore(int(os.Stdin.Fd()), savedTermState)
	}
}

// runRepl drives the loaded network interactively: SPACE steps one
// cycle, 0-9 toggles the switch of that ordinal position among the
// circuit's SWITCH devices, 'r' resets, 'q' or Ctrl-C quits.
func runRepl(l *loaded, d *sim.Driver) error {
	if err := setupTerminal(); err != nil {
		return err
	}
	defer restoreTerminal()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		restoreTerminal()
		os.Exit(130)
	}()

	switches := l.p.Catalog.FindDevices(devices.SWITCH)
	printReplHelp(l, switches)

	buf := make([]byte, 1)
	for {
		fmt.Print("\r\n> ")
		if _, err := os.Stdin.Read(buf); err != nil {
			return nil
		}
		switch c := buf[0]; {
		case c == 'q' || c == 3: // Ctrl-C delivered as a byte in raw mode
			return nil
		case c == ' ':
			if err := d.Run(1); err != nil {
				fmt.Printf("\r\n%v\r\n", err)
				continue
			}
			printCycleRow(l, d)
		case c == 'r':
			d.Reset()
			fmt.Print("\r\nreset\r\n")
		case c >= '0' && c <= '9':
			idx := int(c - '0')
			if idx >= len(switches) {
				fmt.Printf("\r\nno switch #%d\r\n", idx)
				continue
			}
			id := switches[idx]
			cur := l.p.Catalog.GetDevice(id).Outputs[devices.NoPort]
			next := devices.LOW
			if cur == devices.LOW {
				next = devices.HIGH
			}
			d.ToggleSwitch(id, next)
			name, _ := l.tbl.Resolve(id)
			fmt.Printf("\r\n%s -> %v\r\n", name, next)
		default:
			printReplHelp(l, switches)
		}
	}
}

func printReplHelp(l *loaded, switches []names.ID) {
	fmt.Print("\r\nSPACE step one cycle, 0-9 toggle switch by position, r reset, q quit\r\n")
	for i, id := range switches {
		if i > 9 {
			break
		}
		name, _ := l.tbl.Resolve(id)
		fmt.Printf("\r\n  %d: %s", i, name)
	}
	fmt.Print("\r\n")
}

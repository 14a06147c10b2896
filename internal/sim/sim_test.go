// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// Unit tests for the simulation driver.

package sim

import (
	"strings"
	"testing"

	"github.com/gmofishsauce/logisim/internal/devices"
	"github.com/gmofishsauce/logisim/internal/monitors"
	"github.com/gmofishsauce/logisim/internal/names"
	"github.com/gmofishsauce/logisim/internal/parser"
	"github.com/gmofishsauce/logisim/internal/scanner"
)

func buildDriver(t *testing.T, src string) (*Driver, *parser.Parser) {
	t.Helper()
	tbl := names.New()
	sc, err := scanner.New(strings.NewReader(src), tbl)
	if err != nil {
		t.Fatalf("scanner.New: %v", err)
	}
	p := parser.New(sc, tbl)
	r := p.Parse()
	if !r.Success {
		t.Fatalf("unexpected parse errors: %v", r.Errors)
	}
	return New(p.Catalog, p.Network, p.Monitors), p
}

func resolveName(t *testing.T, p *parser.Parser, n string) names.ID {
	t.Helper()
	id, ok := p.ResolveName(n)
	if !ok {
		t.Fatalf("name %q was never interned", n)
	}
	return id
}

const clockChainSrc = `DEVICES
D1 : SWITCH 1, C1 : CLOCK 1, SET1 : SWITCH 0, CLR1 : SWITCH 0, FF1 : DTYPE;
CONNECT
D1 > FF1.DATA, C1 > FF1.CLK, SET1 > FF1.SET, CLR1 > FF1.CLEAR;
MONITOR FF1.Q;
END`

func TestRunRecordsMonitorHistory(t *testing.T) {
	d, p := buildDriver(t, clockChainSrc)
	if err := d.Run(4); err != nil {
		t.Fatalf("Run: %v", err)
	}
	ff1 := resolveName(t, p, "FF1")
	hist, ok := d.Monitors.History(ff1, names.Q)
	if !ok {
		t.Fatalf("expected FF1.Q to be monitored")
	}
	if len(hist) != 4 {
		t.Fatalf("got %d history entries, want 4", len(hist))
	}
	if d.CyclesRun() != 4 {
		t.Fatalf("got CyclesRun()=%d, want 4", d.CyclesRun())
	}
}

func TestRunStopsOnOscillation(t *testing.T) {
	d, _ := buildDriver(t, "DEVICES N1 : NAND 1; CONNECT N1 > N1.I1; END")
	if err := d.Run(3); err == nil {
		t.Fatalf("expected an oscillation error")
	}
}

func TestResetClearsHistoryAndCounters(t *testing.T) {
	d, p := buildDriver(t, clockChainSrc)
	d.Run(3)
	d.Reset()
	if d.CyclesRun() != 0 {
		t.Fatalf("got CyclesRun()=%d after reset, want 0", d.CyclesRun())
	}
	ff1 := resolveName(t, p, "FF1")
	hist, _ := d.Monitors.History(ff1, names.Q)
	if len(hist) != 0 {
		t.Fatalf("got %d history entries after reset, want 0", len(hist))
	}
	q := d.Catalog.GetDevice(ff1)
	if q.Outputs[names.Q] != devices.LOW {
		t.Fatalf("FF1.Q after reset = %v, want LOW", q.Outputs[names.Q])
	}
}

func TestToggleSwitchBetweenCycles(t *testing.T) {
	d, p := buildDriver(t, "DEVICES S1 : SWITCH 0, A1 : AND 1; CONNECT S1 > A1.I1; END")
	s1 := resolveName(t, p, "S1")
	a1 := resolveName(t, p, "A1")

	d.Run(1)
	out, _ := d.Network.GetOutputSignal(a1, devices.NoPort)
	if out != devices.LOW {
		t.Fatalf("A1 with S1=0 = %v, want LOW", out)
	}

	if !d.ToggleSwitch(s1, devices.HIGH) {
		t.Fatalf("expected ToggleSwitch to succeed on a SWITCH device")
	}
	d.Run(1)
	out, _ = d.Network.GetOutputSignal(a1, devices.NoPort)
	if out != devices.HIGH {
		t.Fatalf("A1 with S1=1 = %v, want HIGH", out)
	}
}

func TestAddMonitorPrepadsToCurrentCycleCount(t *testing.T) {
	d, p := buildDriver(t, "DEVICES S1 : SWITCH 1; END")
	d.Run(3)
	s1 := resolveName(t, p, "S1")
	if r := d.AddMonitor(s1, devices.NoPort); r != monitors.NoError {
		t.Fatalf("AddMonitor: got %v, want NoError", r)
	}
	hist, _ := d.Monitors.History(s1, devices.NoPort)
	if len(hist) != 3 {
		t.Fatalf("got %d prepadded entries, want 3", len(hist))
	}
	for i, l := range hist {
		if l != devices.BLANK {
			t.Fatalf("entry %d = %v, want BLANK", i, l)
		}
	}
}

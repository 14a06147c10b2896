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

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gmofishsauce/logisim/internal/devices"
	"github.com/gmofishsauce/logisim/internal/monitors"
	"github.com/gmofishsauce/logisim/internal/sim"
)

func newRunCmd() *cobra.Command {
	var cycles int
	var monitorOnly bool
	var perCycle bool
	var repl bool

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Parse a circuit description and simulate it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadFile(args[0])
			if err != nil {
				return err
			}
			if !l.result.Success {
				fmt.Print(l.result.Report(l.sc))
				return fmt.Errorf("%d error(s) in %s", len(l.result.Errors), args[0])
			}
			if !monitorOnly {
				monitored, unmonitored := l.p.Monitors.SignalNames(l.tbl)
				logrus.WithFields(logrus.Fields{
					"devices":     len(l.p.Catalog.Order()),
					"monitored":   len(monitored),
					"unmonitored": len(unmonitored),
				}).Info("network loaded")
			}

			d := sim.New(l.p.Catalog, l.p.Network, l.p.Monitors)
			l.p.Network.OscillationLimit = cfg.OscillationLimit

			if repl {
				return runRepl(l, d)
			}

			n := cycles
			if n <= 0 {
				n = cfg.DefaultRunCycles
			}

			if perCycle {
				for i := 0; i < n; i++ {
					if err := d.Run(1); err != nil {
						printTrace(l, d)
						return err
					}
					printCycleRow(l, d)
				}
				return nil
			}

			if err := d.Run(n); err != nil {
				printTrace(l, d)
				return err
			}
			printTrace(l, d)
			return nil
		},
	}

	cmd.Flags().IntVarP(&cycles, "cycles", "n", 0, "number of cycles to run (default from config)")
	cmd.Flags().BoolVar(&monitorOnly, "monitor-only", false, "suppress the network summary line")
	cmd.Flags().BoolVar(&perCycle, "per-cycle", false, "print one row of monitored signals after every cycle")
	cmd.Flags().BoolVar(&repl, "repl", false, "run interactively, one keystroke per command")
	return cmd
}

func printTrace(l *loaded, d *sim.Driver) {
	for _, key := range d.Monitors.Monitored() {
		hist, _ := d.Monitors.History(key.Device, key.Port)
		fmt.Printf("%-20s %v\n", monitorLabel(l, key), hist)
	}
}

func printCycleRow(l *loaded, d *sim.Driver) {
	var row []string
	for _, key := range d.Monitors.Monitored() {
		hist, _ := d.Monitors.History(key.Device, key.Port)
		if len(hist) == 0 {
			continue
		}
		row = append(row, fmt.Sprintf("%s=%v", monitorLabel(l, key), hist[len(hist)-1]))
	}
	fmt.Printf("cycle %d: %v\n", d.CyclesRun(), row)
}

func monitorLabel(l *loaded, key monitors.Key) string {
	devName, _ := l.tbl.Resolve(key.Device)
	if key.Port == devices.NoPort {
		return devName
	}
	portName, _ := l.tbl.Resolve(key.Port)
	return devName + "." + portName
}

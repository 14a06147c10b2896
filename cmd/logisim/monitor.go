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

	"github.com/spf13/cobra"

	"github.com/gmofishsauce/logisim/internal/monitors"
	"github.com/gmofishsauce/logisim/internal/sim"
)

func newMonitorCmd() *cobra.Command {
	var add []string
	var remove []string

	cmd := &cobra.Command{
		Use:   "monitor <file>",
		Short: "Add or remove monitored signals and print the resulting monitor set",
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

			d := sim.New(l.p.Catalog, l.p.Network, l.p.Monitors)

			for _, ref := range add {
				dev, port, perr := resolveSignal(l, ref)
				if perr != nil {
					reportSignalError(l, perr)
					return fmt.Errorf("cannot monitor %s", ref)
				}
				if r := d.AddMonitor(dev, port); r != monitors.NoError {
					return fmt.Errorf("cannot monitor %s: %v", ref, r)
				}
			}
			for _, ref := range remove {
				dev, port, perr := resolveSignal(l, ref)
				if perr != nil {
					reportSignalError(l, perr)
					return fmt.Errorf("cannot stop monitoring %s", ref)
				}
				if !d.RemoveMonitor(dev, port) {
					return fmt.Errorf("%s was not monitored", ref)
				}
			}

			monitored, unmonitored := l.p.Monitors.SignalNames(l.tbl)
			fmt.Println("monitored:")
			for _, name := range monitored {
				fmt.Printf("  %s\n", name)
			}
			fmt.Println("available:")
			for _, name := range unmonitored {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&add, "add", nil, "signal to add, as NAME or NAME.PORT (repeatable)")
	cmd.Flags().StringArrayVar(&remove, "remove", nil, "signal to stop monitoring (repeatable)")
	return cmd
}

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
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Parse a circuit description and report diagnostics without simulating it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadFile(args[0])
			if err != nil {
				return err
			}
			logrus.WithField("file", args[0]).Debug("parsed")
			if !l.result.Success {
				fmt.Print(l.result.Report(l.sc))
				return fmt.Errorf("%d error(s) in %s", len(l.result.Errors), args[0])
			}
			fmt.Printf("%s: OK (%d devices)\n", args[0], len(l.p.Catalog.Order()))
			return nil
		},
	}
}

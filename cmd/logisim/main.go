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
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gmofishsauce/logisim/internal/config"
)

var (
	cfgFile         string
	flagOscillation int
	flagLogLevel    string
	cfg             config.Config
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "logisim",
		Short: "Parse and simulate logic circuit description files",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgFile)
			if err != nil && cfgFile != "" {
				return err
			}
			cfg = loaded.ApplyOverrides(flagOscillation, 0, flagLogLevel)
			level, err := logrus.ParseLevel(cfg.LogLevel)
			if err != nil {
				level = logrus.InfoLevel
			}
			logrus.SetLevel(level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
	root.PersistentFlags().IntVar(&flagOscillation, "oscillation-limit", 0, "propagation stabilizer iteration cap (0 = use config/default)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "logrus level: debug, info, warn, error")

	root.AddCommand(newCheckCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newMonitorCmd())
	return root
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

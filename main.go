package main

import (
	"os"

	"fjacquet/mpr-recon/cmd/mapping"
	"fjacquet/mpr-recon/cmd/profile"
	"fjacquet/mpr-recon/cmd/reconcile"
	"fjacquet/mpr-recon/cmd/root"
	"fjacquet/mpr-recon/internal/config"
)

func init() {
	// 1. Load .env before viper reads the environment
	_, _ = config.LoadEnv()

	// 2. Initialize root command
	root.Init()

	// 3. Add all subcommands
	root.Cmd.AddCommand(reconcile.Cmd)
	root.Cmd.AddCommand(mapping.Cmd)
	root.Cmd.AddCommand(profile.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

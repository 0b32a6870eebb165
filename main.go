package main

import (
	"fmt"
	"os"

	"radiologi/xa-dose/cmd/classify"
	"radiologi/xa-dose/cmd/match"
	"radiologi/xa-dose/cmd/root"
	"radiologi/xa-dose/cmd/tables"
	"radiologi/xa-dose/cmd/validate"
	"radiologi/xa-dose/internal/config"

	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	config.LoadEnv()

	// 2. Set the global log level before any logger is created
	logrus.SetLevel(config.LevelFromEnv())

	// 3. Initialize root command flags
	root.Init()

	// 4. Add all subcommands
	root.Cmd.AddCommand(classify.Cmd)
	root.Cmd.AddCommand(match.Cmd)
	root.Cmd.AddCommand(validate.Cmd)
	root.Cmd.AddCommand(tables.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var connectorsCmd = &cobra.Command{
	Use:     "connectors",
	Aliases: []string{"plugins"},
	Short:   "lists the registered connector classes",
	Example: "voltree connectors",
	Args:    cobra.NoArgs,
	Run:     doConnectors,
}

func initConnectors() {
}

func doConnectors(cmd *cobra.Command, args []string) {
	logger, closeLog, err := newLogger()
	if err != nil {
		cobra.CheckErr(err)
		return
	}
	defer closeLog()

	lib, err := newLibrary(logger)
	if err != nil {
		logger.Error().Stack().Err(err).Msg("cannot create library")
		return
	}

	for _, cls := range lib.Classes().Classes() {
		marker := " "
		if cls.Name() == conf.Connector {
			marker = "*"
		}
		fmt.Printf("%s %-10s value=%d version=%d\n", marker, cls.Name(), cls.Value(), cls.Version())
	}
}

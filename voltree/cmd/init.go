package cmd

import (
	"github.com/spf13/cobra"

	"github.com/voltree-archive/voltree/pkg/vol"
)

var initCmd = &cobra.Command{
	Use:     "init [container]",
	Aliases: []string{"create"},
	Short:   "initializes an empty container",
	Long:    "initializes an empty container on the configured connector",
	Example: "voltree init ./archive",
	Args:    cobra.ExactArgs(1),
	Run:     doInit,
}

func initInit() {
	initCmd.Flags().BoolP("force", "f", false, "overwrite an existing container")
}

func doInitConf(cmd *cobra.Command) {
	if getFlagBool(cmd, "force") {
		conf.Init.Force = true
	}
}

func doInit(cmd *cobra.Command, args []string) {
	container := args[0]

	logger, closeLog, err := newLogger()
	if err != nil {
		cobra.CheckErr(err)
		return
	}
	defer closeLog()

	doInitConf(cmd)

	logger.Info().Msgf("creating '%s'", container)
	t := startTimer()
	defer func() { logger.Info().Msgf("duration: %s", t.String()) }()

	lib, err := newLibrary(logger)
	if err != nil {
		logger.Error().Stack().Err(err).Msg("cannot create library")
		return
	}

	flags := vol.FlagExclusive
	if conf.Init.Force {
		flags = vol.FlagTruncate
	}
	fileH, err := lib.FileCreate(container, flags, nil, accessConfig(), nil)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot create container '%s'", container)
		return
	}
	if err := lib.Close(fileH); err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot close container '%s'", container)
	}
}

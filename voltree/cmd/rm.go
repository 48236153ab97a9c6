package cmd

import (
	"github.com/spf13/cobra"

	"github.com/voltree-archive/voltree/pkg/vol"
)

var rmCmd = &cobra.Command{
	Use:     "rm [container] [object path]",
	Aliases: []string{"remove", "delete"},
	Short:   "removes an object or a whole container",
	Long: "removes the link at the given object path; without a path the\n" +
		"whole container is deleted",
	Example: "voltree rm ./archive measurements/run1",
	Args:    cobra.RangeArgs(1, 2),
	Run:     doRm,
}

func initRm() {
}

func doRm(cmd *cobra.Command, args []string) {
	container := args[0]

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

	if len(args) == 1 {
		// whole container, goes through the class carve-out without
		// opening
		if err := lib.FileDelete(container, accessConfig(), nil); err != nil {
			logger.Error().Stack().Err(err).Msgf("cannot delete container '%s'", container)
			return
		}
		logger.Info().Msgf("deleted container '%s'", container)
		return
	}

	objectPath := args[1]
	parts := splitObjectPath(objectPath)
	if len(parts) == 0 {
		cobra.CheckErr("empty object path")
		return
	}

	fileH, err := lib.FileOpen(container, vol.FlagReadWrite, accessConfig(), nil)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot open container '%s'", container)
		return
	}
	defer func() {
		if err := lib.Close(fileH); err != nil {
			logger.Error().Stack().Err(err).Msgf("cannot close container '%s'", container)
		}
	}()

	name := parts[len(parts)-1]
	parentH, owned, err := openParent(lib, fileH, parts[:len(parts)-1], false)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot open parent group of '%s'", objectPath)
		return
	}
	if owned {
		defer func() { _ = lib.Close(parentH) }()
	}

	if err := lib.LinkDelete(parentH, nameLoc(name), nil); err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot delete '%s'", objectPath)
		return
	}
	logger.Info().Msgf("deleted '%s'", objectPath)
}

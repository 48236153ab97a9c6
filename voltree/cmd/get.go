package cmd

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/voltree-archive/voltree/pkg/vol"
)

var getCmd = &cobra.Command{
	Use:     "get [container] [object path] [target file]",
	Aliases: []string{"extract"},
	Short:   "extracts a dataset into a file",
	Example: "voltree get ./archive measurements/run1 ./run1.bin",
	Args:    cobra.ExactArgs(3),
	Run:     doGet,
}

func initGet() {
}

func doGet(cmd *cobra.Command, args []string) {
	container := args[0]
	objectPath := args[1]
	target := args[2]

	logger, closeLog, err := newLogger()
	if err != nil {
		cobra.CheckErr(err)
		return
	}
	defer closeLog()

	parts := splitObjectPath(objectPath)
	if len(parts) == 0 {
		cobra.CheckErr("empty object path")
		return
	}
	name := parts[len(parts)-1]
	dirParts := parts[:len(parts)-1]

	logger.Info().Msgf("extracting '%s' from '%s'", objectPath, container)
	t := startTimer()
	defer func() { logger.Info().Msgf("duration: %s", t.String()) }()

	lib, err := newLibrary(logger)
	if err != nil {
		logger.Error().Stack().Err(err).Msg("cannot create library")
		return
	}

	fileH, err := lib.FileOpen(container, vol.FlagReadOnly, accessConfig(), nil)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot open container '%s'", container)
		return
	}
	defer func() {
		if err := lib.Close(fileH); err != nil {
			logger.Error().Stack().Err(err).Msgf("cannot close container '%s'", container)
		}
	}()

	parentH, owned, err := openParent(lib, fileH, dirParts, false)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot open parent group of '%s'", objectPath)
		return
	}
	if owned {
		defer func() { _ = lib.Close(parentH) }()
	}

	dsetH, err := lib.DatasetOpen(parentH, selfLoc(), name, nil, nil)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot open dataset '%s'", objectPath)
		return
	}
	defer func() { _ = lib.Close(dsetH) }()

	dtype, err := lib.DatasetGetType(dsetH, nil)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot get datatype of '%s'", objectPath)
		return
	}
	space, err := lib.DatasetGetSpace(dsetH, nil)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot get dataspace of '%s'", objectPath)
		return
	}

	buf := make([]byte, dtype.NumBytes(space.NumElements()))
	if err := lib.DatasetRead(dsetH, dtype, nil, nil, nil, buf, nil); err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot read dataset '%s'", objectPath)
		return
	}

	if err := os.WriteFile(target, buf, 0o644); err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot write '%s'", target)
		return
	}
	logger.Info().Msgf("wrote '%s' (%s)", target, humanize.Bytes(uint64(len(buf))))
}

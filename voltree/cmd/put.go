package cmd

import (
	"os"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/voltree-archive/voltree/pkg/vol"
)

var putCmd = &cobra.Command{
	Use:     "put [container] [object path] [source file]",
	Aliases: []string{"add"},
	Short:   "stores a file as a dataset",
	Long: "stores the content of a file as a dataset inside a container,\n" +
		"creating missing intermediate groups",
	Example: "voltree put ./archive measurements/run1 ./run1.bin",
	Args:    cobra.ExactArgs(3),
	Run:     doPut,
}

func initPut() {
	putCmd.Flags().Uint32("element-size", 0, "element size of the dataset in bytes")
	putCmd.Flags().StringP("message", "m", "", "comment stored as an attribute on the dataset")
}

func doPutConf(cmd *cobra.Command) {
	if size, err := cmd.Flags().GetUint32("element-size"); err == nil && size > 0 {
		conf.Put.ElementSize = size
	}
	if str := getFlagString(cmd, "message"); str != "" {
		conf.Put.Message = str
	}
}

func doPut(cmd *cobra.Command, args []string) {
	container := args[0]
	objectPath := strings.Trim(args[1], "/")
	source := args[2]

	logger, closeLog, err := newLogger()
	if err != nil {
		cobra.CheckErr(err)
		return
	}
	defer closeLog()

	doPutConf(cmd)

	parts := splitObjectPath(objectPath)
	if len(parts) == 0 {
		cobra.CheckErr("empty object path")
		return
	}
	name := parts[len(parts)-1]
	dirParts := parts[:len(parts)-1]

	data, err := os.ReadFile(source)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot read '%s'", source)
		return
	}
	if conf.Put.ElementSize == 0 || len(data)%int(conf.Put.ElementSize) != 0 {
		logger.Error().Msgf("source size %d is no multiple of element size %d", len(data), conf.Put.ElementSize)
		return
	}

	logger.Info().Msgf("storing '%s' (%s) as '%s'", source, humanize.Bytes(uint64(len(data))), objectPath)
	t := startTimer()
	defer func() { logger.Info().Msgf("duration: %s", t.String()) }()

	lib, err := newLibrary(logger)
	if err != nil {
		logger.Error().Stack().Err(err).Msg("cannot create library")
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

	parentH, owned, err := openParent(lib, fileH, dirParts, true)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot open parent group '%s'", path.Dir(objectPath))
		return
	}
	if owned {
		defer func() { _ = lib.Close(parentH) }()
	}

	dtype := vol.Datatype{Class: vol.TypeOpaque, Size: conf.Put.ElementSize}
	space := &vol.Dataspace{Dims: []uint64{uint64(len(data)) / uint64(conf.Put.ElementSize)}}
	dsetH, err := lib.DatasetCreate(parentH, selfLoc(), name, &dtype, space, nil, nil, nil)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot create dataset '%s'", objectPath)
		return
	}
	defer func() { _ = lib.Close(dsetH) }()

	if err := lib.DatasetWrite(dsetH, &dtype, nil, nil, nil, data, nil); err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot write dataset '%s'", objectPath)
		return
	}

	if conf.Put.Message != "" {
		msg := []byte(conf.Put.Message)
		attrType := vol.Datatype{Class: vol.TypeString, Size: 1}
		attrSpace := &vol.Dataspace{Dims: []uint64{uint64(len(msg))}}
		attrH, err := lib.AttrCreate(dsetH, selfLoc(), "message", &attrType, attrSpace, nil, nil, nil)
		if err != nil {
			logger.Error().Stack().Err(err).Msgf("cannot create message attribute on '%s'", objectPath)
			return
		}
		defer func() { _ = lib.Close(attrH) }()
		if err := lib.AttrWrite(attrH, &attrType, msg, nil, nil); err != nil {
			logger.Error().Stack().Err(err).Msgf("cannot write message attribute on '%s'", objectPath)
			return
		}
	}
}

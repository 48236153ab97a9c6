package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/voltree-archive/voltree/pkg/vol"
)

var statCmd = &cobra.Command{
	Use:     "stat [container] [object path]",
	Aliases: []string{"info"},
	Short:   "statistics of a container or object",
	Example: "voltree stat ./archive measurements/run1",
	Args:    cobra.RangeArgs(1, 2),
	Run:     doStat,
}

var statInfoFields = []string{"container", "object", "attributes"}

func initStat() {
	statCmd.Flags().String("stat-info", "", fmt.Sprintf("comma separated list of info fields to show [%s]", strings.Join(statInfoFields, ",")))
}

func doStatConf(cmd *cobra.Command) {
	if str := getFlagString(cmd, "stat-info"); str != "" {
		conf.Stat.Info = []string{}
		for _, s := range strings.Split(str, ",") {
			conf.Stat.Info = append(conf.Stat.Info, strings.ToLower(strings.TrimSpace(s)))
		}
	}
	for _, field := range conf.Stat.Info {
		var found bool
		for _, known := range statInfoFields {
			if known == field {
				found = true
				break
			}
		}
		if !found {
			_ = cmd.Help()
			cobra.CheckErr(fmt.Errorf("--stat-info invalid value '%s'", field))
		}
	}
}

func statWants(field string) bool {
	for _, f := range conf.Stat.Info {
		if f == field {
			return true
		}
	}
	return false
}

func doStat(cmd *cobra.Command, args []string) {
	container := args[0]
	objectPath := ""
	if len(args) > 1 {
		objectPath = args[1]
	}

	logger, closeLog, err := newLogger()
	if err != nil {
		cobra.CheckErr(err)
		return
	}
	defer closeLog()

	doStatConf(cmd)

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

	if statWants("container") {
		info, err := lib.FileGetInfo(fileH, nil)
		if err != nil {
			logger.Error().Stack().Err(err).Msgf("cannot stat container '%s'", container)
			return
		}
		fmt.Printf("container: %s\n", info.Name)
		fmt.Printf("objects:   %d\n", info.ObjectCount)
	}

	if objectPath == "" {
		return
	}

	parts := splitObjectPath(objectPath)
	name := parts[len(parts)-1]
	parentH, owned, err := openParent(lib, fileH, parts[:len(parts)-1], false)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot open parent group of '%s'", objectPath)
		return
	}
	if owned {
		defer func() { _ = lib.Close(parentH) }()
	}

	info, err := lib.ObjectGetInfo(parentH, nameLoc(name), nil)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot stat object '%s'", objectPath)
		return
	}

	if statWants("object") {
		fmt.Printf("object:    %s\n", objectPath)
		fmt.Printf("type:      %s\n", info.Type)
		if info.Type == vol.ObjectTypeDataset {
			dsetH, err := lib.DatasetOpen(parentH, selfLoc(), name, nil, nil)
			if err != nil {
				logger.Error().Stack().Err(err).Msgf("cannot open dataset '%s'", objectPath)
				return
			}
			defer func() { _ = lib.Close(dsetH) }()
			size, err := lib.DatasetGetStorageSize(dsetH, nil)
			if err != nil {
				logger.Error().Stack().Err(err).Msgf("cannot get storage size of '%s'", objectPath)
				return
			}
			space, err := lib.DatasetGetSpace(dsetH, nil)
			if err != nil {
				logger.Error().Stack().Err(err).Msgf("cannot get dataspace of '%s'", objectPath)
				return
			}
			fmt.Printf("dims:      %v\n", space.Dims)
			fmt.Printf("storage:   %s\n", humanize.Bytes(size))
		}
	}

	if statWants("attributes") {
		fmt.Printf("attributes: %d\n", info.AttrCount)
	}
}

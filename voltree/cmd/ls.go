package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voltree-archive/voltree/pkg/vol"
)

var lsCmd = &cobra.Command{
	Use:     "ls [container] [object path]",
	Aliases: []string{"list"},
	Short:   "lists the links of a group",
	Example: "voltree ls ./archive measurements",
	Args:    cobra.RangeArgs(1, 2),
	Run:     doLs,
}

var lsIndexKinds = map[string]vol.IndexKind{
	"name":  vol.IndexName,
	"order": vol.IndexCreationOrder,
}

var lsOrders = map[string]vol.IterOrder{
	"inc": vol.OrderIncreasing,
	"dec": vol.OrderDecreasing,
}

func initLs() {
	lsCmd.Flags().String("index", "", "iteration index (name|order)")
	lsCmd.Flags().String("order", "", "iteration direction (inc|dec)")
}

func doLsConf(cmd *cobra.Command) {
	if str := getFlagString(cmd, "index"); str != "" {
		conf.Ls.Index = strings.ToLower(str)
	}
	if str := getFlagString(cmd, "order"); str != "" {
		conf.Ls.Order = strings.ToLower(str)
	}
	if _, ok := lsIndexKinds[conf.Ls.Index]; !ok {
		_ = cmd.Help()
		cobra.CheckErr(fmt.Errorf("invalid value '%s' for flag 'index'", conf.Ls.Index))
	}
	if _, ok := lsOrders[conf.Ls.Order]; !ok {
		_ = cmd.Help()
		cobra.CheckErr(fmt.Errorf("invalid value '%s' for flag 'order'", conf.Ls.Order))
	}
}

func doLs(cmd *cobra.Command, args []string) {
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

	doLsConf(cmd)

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

	parentH, owned, err := openParent(lib, fileH, splitObjectPath(objectPath), false)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot open group '%s'", objectPath)
		return
	}
	if owned {
		defer func() { _ = lib.Close(parentH) }()
	}

	visit := func(name string, info *vol.LinkInfo) error {
		switch info.Type {
		case vol.LinkTypeSoft:
			fmt.Printf("%4d  %s -> %s\n", info.CreationOrder, name, info.Target)
		default:
			fmt.Printf("%4d  %s\n", info.CreationOrder, name)
		}
		return nil
	}
	if err := lib.LinkIterate(parentH, selfLoc(), lsIndexKinds[conf.Ls.Index], lsOrders[conf.Ls.Order], visit, nil); err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot iterate links of '%s'", objectPath)
		return
	}
}

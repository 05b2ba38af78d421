package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
)

var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Create and inspect assets",
}

var (
	assetTypeName   string
	assetDesc       string
	assetCreateName string
)

var assetCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		assetCreateName = args[0]
		typed, err := theApp.Types.NewAsset(rootCtx, theApp.Registry, assetTypeName, pipelinepb.AssetData{
			Name:        assetCreateName,
			Description: assetDesc,
		})
		if err != nil {
			return err
		}
		data, err := typed.Data(rootCtx)
		if err != nil {
			return err
		}
		return printAssetData(data)
	},
}

var assetShowCmd = &cobra.Command{
	Use:   "show <path_id>",
	Short: "Show an asset's record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := theApp.Registry.Store().GetAssetData(rootCtx, args[0])
		if err != nil {
			return err
		}
		return printAssetData(data)
	},
}

func printAssetData(data pipelinepb.AssetData) error {
	if jsonOutput {
		enc := json.NewEncoder(cmdOut())
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	fmt.Fprintf(cmdOut(), "%s  %s\n", styleOK.Render(data.PathID), data.Name)
	fmt.Fprintf(cmdOut(), "  type: %s\n", data.TypeName)
	if data.Description != "" {
		fmt.Fprintf(cmdOut(), "  %s\n", styleDim.Render(data.Description))
	}
	return nil
}

func init() {
	assetCreateCmd.Flags().StringVar(&assetTypeName, "type", "generic", "registered asset type_name")
	assetCreateCmd.Flags().StringVar(&assetDesc, "description", "", "asset description")
	assetCmd.AddCommand(assetCreateCmd, assetShowCmd)
	rootCmd.AddCommand(assetCmd)
}

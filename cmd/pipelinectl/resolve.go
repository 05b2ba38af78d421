package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/registry"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/uri"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <uri>",
	Short: "Resolve a URI through the registered protocol handlers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := uri.Parse(args[0])
		if err != nil {
			return err
		}
		dynamic, err := theApp.Resolver.IsDynamic(rootCtx, u)
		if err != nil {
			return err
		}
		result, err := theApp.Resolver.Fetch(rootCtx, u)
		if err != nil {
			return err
		}

		out := cmdOut()
		switch v := result.(type) {
		case registry.Asset:
			data, err := v.Data(rootCtx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return json.NewEncoder(out).Encode(map[string]any{"dynamic": dynamic, "asset": data})
			}
			fmt.Fprintf(out, "dynamic=%v\n", dynamic)
			return printAssetData(data)
		case registry.AssetVersion:
			data, err := v.Data(rootCtx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return json.NewEncoder(out).Encode(map[string]any{"dynamic": dynamic, "version": data})
			}
			fmt.Fprintf(out, "dynamic=%v\n", dynamic)
			return printAssetVersionData(data)
		default:
			if jsonOutput {
				return json.NewEncoder(out).Encode(map[string]any{"dynamic": dynamic, "value": v})
			}
			fmt.Fprintf(out, "dynamic=%v\nvalue=%v\n", dynamic, v)
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

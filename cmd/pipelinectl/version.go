package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/registry"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Publish and inspect asset versions",
}

var (
	publishExplicit string
	publishDeps     string
	publishParams   string
	publishLockTmpl bool
)

var versionPublishCmd = &cobra.Command{
	Use:   "publish <asset_path_id>",
	Short: "Publish a new version of an asset, cascading any triggered templates",
	Long: `publish reads GenerationTaskParameters from --params (a JSON file, or "-"
for stdin) when given, otherwise publishes with empty parameters.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		assetPathID := args[0]

		params := pipelinepb.NewGenerationTaskParameters()
		if publishParams != "" {
			raw, err := readParamsSource(publishParams)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(raw, &params); err != nil {
				return fmt.Errorf("parse params: %w", err)
			}
		}

		var explicit *version.Triple
		if publishExplicit != "" {
			t, err := version.ParseTriple(publishExplicit)
			if err != nil {
				return err
			}
			explicit = &t
		}

		var deps []registry.AssetVersion
		if publishDeps != "" {
			for _, d := range strings.Split(publishDeps, ",") {
				d = strings.TrimSpace(d)
				if d == "" {
					continue
				}
				deps = append(deps, theApp.Registry.AssetVersion(d))
			}
		}

		asset, err := theApp.Types.GetAsset(rootCtx, theApp.Registry, assetPathID)
		if err != nil {
			return err
		}
		newVer, triggered, err := asset.CreateNewGenericVersion(rootCtx, explicit, &params, deps, publishLockTmpl)
		if err != nil {
			return err
		}

		data, err := newVer.Data(rootCtx)
		if err != nil {
			return err
		}
		if err := printAssetVersionData(data); err != nil {
			return err
		}
		if len(triggered) > 0 && !jsonOutput {
			fmt.Fprintln(cmdOut(), styleDim.Render(fmt.Sprintf("cascaded to %d template(s)", len(triggered))))
			for _, t := range triggered {
				fmt.Fprintf(cmdOut(), "  %s\n", t.PathID())
			}
		}
		return nil
	},
}

var versionShowCmd = &cobra.Command{
	Use:   "show <version_path_id>",
	Short: "Show a version's record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := theApp.Registry.AssetVersion(args[0]).Data(rootCtx)
		if err != nil {
			return err
		}
		return printAssetVersionData(data)
	},
}

var versionAwaitCmd = &cobra.Command{
	Use:   "await <version_path_id>",
	Short: "Schedule data computation if needed and block until it completes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ver := theApp.Registry.AssetVersion(args[0])
		f, err := ver.ScheduleDataCalculationIfNeeded(rootCtx)
		if err != nil {
			return err
		}
		if _, err := f.WaitForResult(rootCtx); err != nil {
			return err
		}
		data, err := ver.Data(rootCtx)
		if err != nil {
			return err
		}
		return printAssetVersionData(data)
	},
}

func readParamsSource(src string) ([]byte, error) {
	if src == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(src)
}

func printAssetVersionData(data pipelinepb.AssetVersionData) error {
	if jsonOutput {
		enc := json.NewEncoder(cmdOut())
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	status := styleWarn.Render(data.DataAvailability.String())
	switch data.DataAvailability {
	case pipelinepb.Available:
		status = styleOK.Render(data.DataAvailability.String())
	}
	fmt.Fprintf(cmdOut(), "%s  %s  [%s]\n", data.PathID, data.VersionID.String(), status)
	fmt.Fprintf(cmdOut(), "  asset: %s\n", data.AssetPathID)
	if data.DataCalculatorID != "" {
		fmt.Fprintf(cmdOut(), "  calculator: %s\n", data.DataCalculatorID)
	}
	return nil
}

func init() {
	versionPublishCmd.Flags().StringVar(&publishExplicit, "version", "", `explicit dotted version, e.g. "3.1"; auto-allocated if omitted`)
	versionPublishCmd.Flags().StringVar(&publishDeps, "deps", "", "comma-separated dependency version_path_ids")
	versionPublishCmd.Flags().StringVar(&publishParams, "params", "", `GenerationTaskParameters JSON file, or "-" for stdin`)
	versionPublishCmd.Flags().BoolVar(&publishLockTmpl, "lock-template", false, "derive an AssetTemplate from this call's lock mapping")
	versionCmd.AddCommand(versionPublishCmd, versionShowCmd, versionAwaitCmd)
	rootCmd.AddCommand(versionCmd)
}

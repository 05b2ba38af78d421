package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// graphCmd is the dot_gen tool equivalent: it walks the dependency DAG from
// the leaf versions (those nothing else depends on) down and emits Graphviz dot, so
// `pipelinectl graph | dot -Tpng -o graph.png` renders the whole pipeline.
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Emit the dependency graph as Graphviz dot",
	RunE: func(cmd *cobra.Command, args []string) error {
		leaves, err := theApp.Store.GetLeafAssetVersionPathIDs(rootCtx)
		if err != nil {
			return err
		}

		visited := make(map[string]bool)
		var edges [][2]string
		worklist := append([]string(nil), leaves...)
		for len(worklist) > 0 {
			id := worklist[0]
			worklist = worklist[1:]
			if visited[id] {
				continue
			}
			visited[id] = true

			deps, err := theApp.Store.GetDependencies(rootCtx, id)
			if err != nil {
				return err
			}
			for _, d := range deps {
				edges = append(edges, [2]string{id, d})
				if !visited[d] {
					worklist = append(worklist, d)
				}
			}
		}

		out := cmdOut()
		fmt.Fprintln(out, "digraph pipeline {")
		fmt.Fprintln(out, `  rankdir="LR";`)
		for id := range visited {
			fmt.Fprintf(out, "  %q;\n", id)
		}
		for _, e := range edges {
			fmt.Fprintf(out, "  %q -> %q;\n", e[0], e[1])
		}
		fmt.Fprintln(out, "}")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

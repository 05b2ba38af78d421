// Command pipelinectl is the operator CLI for the asset-version pipeline
// registry: publishing versions, inspecting the dependency graph, and
// resolving URIs.
package main

func main() {
	Execute()
}

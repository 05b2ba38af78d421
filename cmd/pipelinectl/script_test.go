package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"rsc.io/script"
	"rsc.io/script/scripttest"
)

// TestScenarios drives the built pipelinectl binary through the end-to-end
// scenarios scripted under testdata/script: version allocation, template
// cascade on publish, and lock-overridden default-version resolution.
func TestScenarios(t *testing.T) {
	bin := buildPipelinectl(t)

	ctx := context.Background()
	engine := script.NewEngine()
	env := append(os.Environ(), "PATH="+filepath.Dir(bin)+string(os.PathListSeparator)+os.Getenv("PATH"))
	scripttest.Test(t, ctx, engine, env, filepath.Join("testdata", "script", "*.txt"))
}

func buildPipelinectl(t *testing.T) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), "pipelinectl")
	cmd := exec.Command("go", "build", "-o", bin, ".")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build pipelinectl: %v\n%s", err, out)
	}
	return bin
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leakySource = `// header
class App {
  componentDidMount() {
    this.node.addEventListener('click', this.onClick)
  }
}
`

const balancedSource = `class App {
  componentDidMount() {
    this.node.addEventListener('click', this.onClick)
  }
  componentWillUnmount() {
    this.node.removeEventListener('click', this.onClick)
  }
}
`

const missingMessage = "click on this.node does not have a corresponding removeEventListener"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLI_Help(t *testing.T) {
	code, out, _ := runCLI(t, "--help")
	assert.Equal(t, exitClean, code)
	for _, want := range []string{"check", "rules", "serve", "--log-level"} {
		assert.Contains(t, out, want)
	}
}

func TestCLI_Check(t *testing.T) {
	dir := t.TempDir()
	leaky := writeFile(t, dir, "leaky.js", leakySource)
	balanced := writeFile(t, dir, "balanced.jsx", balancedSource)

	tests := []struct {
		name         string
		args         []string
		wantExit     int
		wantContains []string
	}{
		{"balanced file is clean", []string{"check", balanced}, exitClean, nil},
		{"missing removal", []string{"check", "--color", "never", leaky}, exitDiagnostics, []string{"leaky.js", "4:5", missingMessage, "remove-event-listener", "1 problem"}},
		{"directory", []string{"check", "--color", "never", dir}, exitDiagnostics, []string{missingMessage}},
		{"unknown format", []string{"check", "--format", "xml", leaky}, exitError, nil},
		{"unknown color", []string{"check", "--color", "rainbow", leaky}, exitError, nil},
		{"missing path", []string{"check", filepath.Join(dir, "nope")}, exitError, nil},
		{"invalid scope", []string{"check", "--scope", "module", leaky}, exitError, nil},
		{"invalid log level", []string{"--log-level", "loud", "check", leaky}, exitError, nil},
		{"watch with diff", []string{"check", "--watch", "--diff", "-", leaky}, exitError, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, _ := runCLI(t, tt.args...)
			assert.Equal(t, tt.wantExit, code)
			for _, want := range tt.wantContains {
				assert.Contains(t, out, want)
			}
			if tt.wantExit == exitClean {
				assert.Empty(t, out)
			}
		})
	}
}

func TestCLI_CheckJSON(t *testing.T) {
	leaky := writeFile(t, t.TempDir(), "leaky.js", leakySource)

	code, out, _ := runCLI(t, "check", "--format", "json", leaky)
	require.Equal(t, exitDiagnostics, code)

	var files []struct {
		FilePath   string `json:"filePath"`
		ErrorCount int    `json:"errorCount"`
		Messages   []struct {
			RuleID  *string `json:"ruleId"`
			Message string  `json:"message"`
			Line    int     `json:"line"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	require.Len(t, files, 1)
	assert.Equal(t, leaky, files[0].FilePath)
	require.Len(t, files[0].Messages, 1)
	assert.Equal(t, missingMessage, files[0].Messages[0].Message)
	assert.Equal(t, 4, files[0].Messages[0].Line)
}

func TestCLI_CheckDiff(t *testing.T) {
	dir := t.TempDir()
	leaky := writeFile(t, dir, "leaky.js", leakySource)

	headerOnly := writeFile(t, dir, "header.diff", `--- a/leaky.js
+++ b/leaky.js
@@ -1,2 +1,3 @@
+// header
 class App {
   componentDidMount() {
`)
	listenerLine := writeFile(t, dir, "listener.diff", `--- a/leaky.js
+++ b/leaky.js
@@ -2,3 +2,4 @@
 class App {
   componentDidMount() {
+    this.node.addEventListener('click', this.onClick)
   }
`)

	code, out, _ := runCLI(t, "check", "--diff", headerOnly, leaky)
	assert.Equal(t, exitClean, code)
	assert.Empty(t, out)

	code, out, _ = runCLI(t, "check", "--color", "never", "--diff", listenerLine, leaky)
	assert.Equal(t, exitDiagnostics, code)
	assert.Contains(t, out, missingMessage)
}

func TestCLI_CheckConfig(t *testing.T) {
	dir := t.TempDir()
	leaky := writeFile(t, dir, "leaky.js", leakySource)

	disabled := writeFile(t, dir, "off.yaml", "rules:\n  tipsi/remove-event-listener: false\n")
	code, out, _ := runCLI(t, "check", "--config", disabled, leaky)
	assert.Equal(t, exitClean, code)
	assert.Empty(t, out)

	broken := writeFile(t, dir, "broken.yaml", "scope: [\n")
	code, _, stderr := runCLI(t, "check", "--config", broken, leaky)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "listenercheck:")
}

func TestCLI_CheckCacheDir(t *testing.T) {
	dir := t.TempDir()
	leaky := writeFile(t, dir, "leaky.js", leakySource)
	cacheDir := filepath.Join(t.TempDir(), "cache")

	for i := 0; i < 2; i++ {
		code, out, _ := runCLI(t, "check", "--color", "never", "--cache-dir", cacheDir, leaky)
		assert.Equal(t, exitDiagnostics, code, "run %d", i)
		assert.Contains(t, out, missingMessage, "run %d", i)
	}
	assert.DirExists(t, cacheDir)
}

func TestCLI_Rules(t *testing.T) {
	code, out, _ := runCLI(t, "rules")
	assert.Equal(t, exitClean, code)
	assert.Contains(t, out, "tipsi/remove-event-listener")
	assert.Contains(t, out, "Best Practices")
	assert.Contains(t, out, "true")

	off := writeFile(t, t.TempDir(), "off.yaml", "rules:\n  remove-event-listener: false\n")
	code, out, _ = runCLI(t, "rules", "--json", "--config", off)
	require.Equal(t, exitClean, code)

	var rows []struct {
		ID      string `json:"id"`
		Enabled bool   `json:"enabled"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "remove-event-listener", rows[0].ID)
	assert.False(t, rows[0].Enabled)
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/ast"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/report"
)

const sampleDiff = `diff --git a/src/app.js b/src/app.js
index 1111111..2222222 100644
--- a/src/app.js
+++ b/src/app.js
@@ -1,4 +1,5 @@
 class App {
-  mount() {}
+  mount() {
+    this.node.addEventListener('click', this.onClick)
+  }
   render() {}
 }
diff --git a/src/gone.js b/src/gone.js
deleted file mode 100644
index 3333333..0000000
--- a/src/gone.js
+++ /dev/null
@@ -1 +0,0 @@
-old()
`

func TestParseAddedLines(t *testing.T) {
	added, err := ParseAddedLines([]byte(sampleDiff))
	require.NoError(t, err)

	require.Contains(t, added, "src/app.js")
	assert.Equal(t, map[int]bool{2: true, 3: true, 4: true}, added["src/app.js"])
	assert.NotContains(t, added, "src/gone.js")
	assert.NotContains(t, added, "/dev/null")
}

func TestParseAddedLines_Malformed(t *testing.T) {
	_, err := ParseAddedLines([]byte("--- a/x.js\n+++ b/x.js\n@@ garbage @@\n"))
	assert.Error(t, err)
}

func TestFilterByDiff(t *testing.T) {
	at := func(path string, line int) report.Diagnostic {
		return report.Diagnostic{RuleID: "remove-event-listener", Message: path, Location: ast.Location{FilePath: path, StartLine: line}}
	}
	res := report.NewResult(time.Now(), []report.FileResult{
		{FilePath: "/work/repo/src/app.js", Diagnostics: []report.Diagnostic{
			at("/work/repo/src/app.js", 3),
			at("/work/repo/src/app.js", 5),
		}},
		{FilePath: "/work/repo/src/other.js", Diagnostics: []report.Diagnostic{at("/work/repo/src/other.js", 1)}},
	})

	filtered, err := FilterByDiff(res, []byte(sampleDiff))
	require.NoError(t, err)

	assert.Equal(t, res.RunID, filtered.RunID)
	require.Len(t, filtered.Files, 1)
	assert.Equal(t, "/work/repo/src/app.js", filtered.Files[0].FilePath)
	require.Len(t, filtered.Files[0].Diagnostics, 1)
	assert.Equal(t, 3, filtered.Files[0].Diagnostics[0].Location.StartLine)
	assert.Equal(t, 1, filtered.DiagnosticCount)

	assert.Equal(t, 3, res.DiagnosticCount, "input result is not modified")
}

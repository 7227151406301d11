// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ScopeProgram, cfg.Scope)
	assert.Contains(t, cfg.Extensions, ".jsx")
	assert.Contains(t, cfg.Extensions, ".tsx")
	assert.Contains(t, cfg.Exclude, "node_modules")
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileSize)
	assert.Empty(t, cfg.GlobalReceivers)
	assert.False(t, cfg.Cache.Enabled)
	assert.True(t, cfg.RuleEnabled("remove-event-listener"))
}

func TestParse_MergesOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
scope: class
global_receivers: [window, document]
workers: 4
`))
	require.NoError(t, err)

	assert.Equal(t, ScopeClass, cfg.Scope)
	assert.Equal(t, []string{"window", "document"}, cfg.GlobalReceivers)
	assert.Equal(t, 4, cfg.Workers)
	assert.Contains(t, cfg.Extensions, ".js", "unset keys keep defaults")
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, ScopeProgram, cfg.Scope)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		invalid   bool
		errSubstr string
	}{
		{"unknown scope", "scope: function", true, "Scope"},
		{"extension without dot", "extensions: [js]", true, "Extensions"},
		{"no extensions", "extensions: []", true, "Extensions"},
		{"negative workers", "workers: -1", true, "Workers"},
		{"zero max size", "max_file_size: 0", true, "MaxFileSize"},
		{"cache without dir", "cache: {enabled: true}", true, "Dir"},
		{"empty global", `global_receivers: [""]`, true, "GlobalReceivers"},
		{"unknown key", "scopes: class", false, "scopes"},
		{"malformed yaml", "scope: [", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, path, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, ScopeProgram, cfg.Scope)
}

func TestLoad_FindsProjectFile(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, ".listenercheck.yml")
	require.NoError(t, os.WriteFile(want, []byte("scope: class\n"), 0o600))

	cfg, path, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, want, path)
	assert.Equal(t, ScopeClass, cfg.Scope)
}

func TestLoad_InvalidProjectFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".listenercheck.yaml"), []byte("scope: nope\n"), 0o600))

	_, _, err := Load(dir)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), ".listenercheck.yaml")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRuleEnabled(t *testing.T) {
	cfg, err := Parse([]byte("rules:\n  tipsi/remove-event-listener: false\n"))
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"remove-event-listener": false}, cfg.Rules)

	assert.False(t, cfg.RuleEnabled("remove-event-listener"))
	assert.False(t, cfg.RuleEnabled("tipsi/remove-event-listener"))
	assert.True(t, cfg.RuleEnabled("unlisted-rule"))
}

func TestFingerprint(t *testing.T) {
	base, err := Default()
	require.NoError(t, err)

	same, err := Parse([]byte("workers: 8\nexclude: [vendor]\n"))
	require.NoError(t, err)
	assert.Equal(t, base.Fingerprint(), same.Fingerprint(), "walk-only settings do not change output")

	reordered, err := Parse([]byte("global_receivers: [document, window]\n"))
	require.NoError(t, err)
	ordered, err := Parse([]byte("global_receivers: [window, document]\n"))
	require.NoError(t, err)
	assert.Equal(t, ordered.Fingerprint(), reordered.Fingerprint())
	assert.NotEqual(t, base.Fingerprint(), ordered.Fingerprint())

	class, err := Parse([]byte("scope: class\n"))
	require.NoError(t, err)
	assert.NotEqual(t, base.Fingerprint(), class.Fingerprint())
	assert.Len(t, base.Fingerprint(), 16)
}

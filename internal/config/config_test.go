package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skillcoder/reconfigurer/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "reconfigurer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

const sampleConfig = `namespace: fleet
backupDir: /var/lib/reconfigurer/backup
log:
  level: debug
  format: text
http:
  port: "9090"
services:
  - name: authservice
    manifest: manifests/authservice.yaml
  - name: cartservice
    manifest: manifests/cartservice.yaml
    container: cart
`

func TestLoad(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "fleet", cfg.Namespace)
	require.Equal(t, "/var/lib/reconfigurer/backup", cfg.BackupDir)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, "9090", cfg.HTTPPort)

	require.Equal(t, []config.ServiceEntry{
		{Name: "authservice", Manifest: "manifests/authservice.yaml"},
		{Name: "cartservice", Manifest: "manifests/cartservice.yaml", Container: "cart"},
	}, cfg.Services)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "services:\n  - name: authservice\n    manifest: a.yaml\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "default", cfg.Namespace)
	require.Equal(t, "backup", cfg.BackupDir)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "8080", cfg.HTTPPort)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("RECONF_NAMESPACE", "staging")
	t.Setenv("RECONF_LOG_LEVEL", "warn")

	path := writeConfig(t, sampleConfig)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "staging", cfg.Namespace)
	require.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_RegistryValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "duplicate service",
			content: "services:\n  - name: a\n    manifest: a.yaml\n  - name: a\n    manifest: b.yaml\n",
			wantErr: "duplicate service",
		},
		{
			name:    "missing manifest path",
			content: "services:\n  - name: a\n",
			wantErr: "no manifest path",
		},
		{
			name:    "empty name",
			content: "services:\n  - manifest: a.yaml\n",
			wantErr: "empty name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)

			_, err := config.Load(path)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// writeConfigFile drops a YAML config into a temp dir and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	// No config file at the given path: everything comes from defaults
	cfg, err := Load(writeConfigFile(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "memory", cfg.Volume.Type)
	assert.Equal(t, "memory", cfg.Payload.Type)
	assert.Equal(t, "/var/lib/hollowfs/payloads", cfg.Payload.Filesystem["path"])
	assert.Equal(t, "/var/lib/hollowfs/volume", cfg.Volume.Badger["db_path"])
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: debug

volume:
  type: badger
  badger:
    db_path: /srv/hollow/db
    block_cache_size_mb: 128

payload:
  type: filesystem
  filesystem:
    path: /srv/hollow/payloads
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level, "level is normalized to uppercase")
	assert.Equal(t, "badger", cfg.Volume.Type)
	assert.Equal(t, "/srv/hollow/db", cfg.Volume.Badger["db_path"])
	assert.Equal(t, "filesystem", cfg.Payload.Type)
	assert.Equal(t, "/srv/hollow/payloads", cfg.Payload.Filesystem["path"])
}

func TestLoadEnvironmentOverride(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: info
`)

	t.Setenv("HOLLOWFS_LOGGING_LEVEL", "error")
	t.Setenv("HOLLOWFS_VOLUME_TYPE", "badger")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ERROR", cfg.Logging.Level, "environment beats the file")
	assert.Equal(t, "badger", cfg.Volume.Type)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "bad log level",
			content: `
logging:
  level: verbose
`,
			wantErr: "Logging.Level",
		},
		{
			name: "bad volume type",
			content: `
volume:
  type: etcd
`,
			wantErr: "Volume.Type",
		},
		{
			name: "bad payload type",
			content: `
payload:
  type: gcs
`,
			wantErr: "Payload.Type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadGeneratedFixture(t *testing.T) {
	fixture := map[string]any{
		"logging": map[string]any{"level": "warn"},
		"payload": map[string]any{
			"type": "s3",
			"s3": map[string]any{
				"bucket": "hollow-payloads",
				"region": "eu-west-1",
			},
		},
	}
	raw, err := yaml.Marshal(fixture)
	require.NoError(t, err)

	cfg, err := Load(writeConfigFile(t, string(raw)))
	require.NoError(t, err)

	assert.Equal(t, "WARN", cfg.Logging.Level)
	assert.Equal(t, "s3", cfg.Payload.Type)
	assert.Equal(t, "hollow-payloads", cfg.Payload.S3["bucket"])
	assert.Equal(t, "eu-west-1", cfg.Payload.S3["region"])
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeConfigFile(t, "logging: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidateCustomRules(t *testing.T) {
	t.Run("badger volume needs a db_path", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Volume.Type = "badger"
		cfg.Volume.Badger["db_path"] = ""

		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_path is required")
	})

	t.Run("filesystem payload needs a path", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Payload.Type = "filesystem"
		cfg.Payload.Filesystem["path"] = ""

		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path is required")
	})

	t.Run("defaults pass", func(t *testing.T) {
		assert.NoError(t, Validate(GetDefaultConfig()))
	})
}

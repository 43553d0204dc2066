package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/TEENet-io/devchain/devnet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
rpc-url: http://127.0.0.1:9545
artifacts-dir: build/artifacts
forking:
  url: https://mainnet.example.org/rpc
  block-number: 19000000
seconds-per-block: 2
poll-interval: 250ms
confirmation-timeout: 30s
tracer: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "devnet.yaml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(ENV_CONFIG_FILE_PATH, "")

	cfg, err := LoadConfig(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, devnet.DefaultConfig(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	file := writeConfig(t, testConfigYAML)

	cfg, err := LoadConfig(NewViper(), file)
	require.NoError(t, err)
	assert.Equal(t, &devnet.Config{
		RPCURL:       "http://127.0.0.1:9545",
		ArtifactsDir: "build/artifacts",
		Forking: devnet.ForkingConfig{
			URL:         "https://mainnet.example.org/rpc",
			BlockNumber: 19000000,
		},
		SecondsPerBlock:     2,
		PollInterval:        250 * time.Millisecond,
		ConfirmationTimeout: 30 * time.Second,
		Tracer:              false,
	}, cfg)
}

func TestLoadConfigEnv(t *testing.T) {
	file := writeConfig(t, testConfigYAML)
	t.Setenv(ENV_CONFIG_FILE_PATH, file)
	t.Setenv("DEVNET_RPC_URL", "http://node:8545")
	t.Setenv("DEVNET_FORKING_BLOCK_NUMBER", "5")

	cfg, err := LoadConfig(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "http://node:8545", cfg.RPCURL)
	assert.Equal(t, uint64(5), cfg.Forking.BlockNumber)
	assert.Equal(t, "https://mainnet.example.org/rpc", cfg.Forking.URL)
	assert.Equal(t, uint64(2), cfg.SecondsPerBlock)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv(ENV_CONFIG_FILE_PATH, "")

	_, err := LoadConfig(NewViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigFileNotFound)

	file := writeConfig(t, "seconds-per-block: 0\n")
	_, err = LoadConfig(NewViper(), file)
	assert.ErrorIs(t, err, devnet.ErrInvalidBlockTime)

	file = writeConfig(t, "rpc-url: [not, a, string\n")
	_, err = LoadConfig(NewViper(), file)
	assert.Error(t, err)
}

func TestFileExists(t *testing.T) {
	file := writeConfig(t, "tracer: true\n")
	assert.True(t, FileExists(file))
	assert.False(t, FileExists(file+".missing"))
}

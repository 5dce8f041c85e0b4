package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "osaka", cfg.Organization)
	assert.Equal(t, int64(5777), cfg.API.LocalChainID)
	assert.Len(t, cfg.Registry().List(), 8)

	osaka, err := cfg.Registry().Get("osaka")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x7D1a4fC6Df3B16eB894004A4586A29f39Ba6d205"), osaka.Address)
	assert.Equal(t, "DAI", osaka.Unit)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
rpc_url: http://node:8545
organization: local
organizations:
  - key: local
    name: Local DAO
    address: "0x00000000000000000000000000000000000000aa"
    unit: DAI
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("DAOSCOPE_RPC_URL", "http://override:8545")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://override:8545", cfg.RPCURL)
	assert.Equal(t, []string{"local"}, cfg.Registry().Keys())
}

func TestValidate_RejectsUnknownDefaultOrganization(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Organization = "atlantis"

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownOrganization))
	assert.Nil(t, cfg.Registry())
}

func TestValidate_TelegramPair(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Telegram.BotToken = "token"
	assert.Error(t, cfg.Validate())
}

func TestNewRegistry_Validation(t *testing.T) {
	tests := []struct {
		name    string
		entries []OrganizationConfig
		wantErr bool
	}{
		{"empty", nil, true},
		{"missing key", []OrganizationConfig{{Address: "0x00000000000000000000000000000000000000aa"}}, true},
		{"bad address", []OrganizationConfig{{Key: "a", Address: "0x123"}}, true},
		{"duplicate", []OrganizationConfig{
			{Key: "a", Address: "0x00000000000000000000000000000000000000aa"},
			{Key: "a", Address: "0x00000000000000000000000000000000000000bb"},
		}, true},
		{"ok", []OrganizationConfig{{Key: "a", Address: "0x00000000000000000000000000000000000000aa"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.entries)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegistry_NameFallsBackToKey(t *testing.T) {
	reg, err := NewRegistry([]OrganizationConfig{{Key: "a", Address: "0x00000000000000000000000000000000000000aa"}})
	require.NoError(t, err)
	org, err := reg.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", org.Name)

	_, err = reg.Get("b")
	assert.ErrorIs(t, err, ErrUnknownOrganization)
}

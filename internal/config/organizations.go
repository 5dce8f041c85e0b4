package config

import (
	"errors"
	"fmt"
	"strings"

	"DAOScope/internal/model"

	"github.com/ethereum/go-ethereum/common"
)

// ErrUnknownOrganization is returned for keys that are not in the organization table.
var ErrUnknownOrganization = errors.New("unknown organization")

// OrganizationConfig is the YAML shape of one organization entry.
type OrganizationConfig struct {
	Key     string `yaml:"key"`
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Unit    string `yaml:"unit"`
}

// DefaultOrganizations is the built-in table used when the config file lists none.
func DefaultOrganizations() []OrganizationConfig {
	return []OrganizationConfig{
		{Key: "osaka", Name: "🌸 DAOsaka 🌸", Address: "0x7D1a4fC6Df3B16eB894004A4586A29f39Ba6d205", Unit: "DAI"},
		{Key: "moloch", Name: "👹 Moloch DAO 👹", Address: "0x1fd169A4f5c59ACf79d0Fd5d91D1201EF1Bce9f1", Unit: "wETH"},
		{Key: "metacartel", Name: "🌶️ MetaCartel DAO 🌶️", Address: "0x0372f3696fa7dc99801f435fd6737e57818239f2", Unit: "wETH"},
		{Key: "yang", Name: "🌅 YangDAO 🌅", Address: "0xb3c02f093e6140ed2ad91be66b302f938cd8434f", Unit: "wETH"},
		{Key: "orochi", Name: "🐍 Orochi DAO 🐍", Address: "0x8487dcc6f4b28b911e22a8657ebb16427d4cf5c0", Unit: "wETH"},
		{Key: "james", Name: "👩 James DAO 👩", Address: "0x77b53ad9d111029d1f16f4f19769846384bda49b", Unit: "wETH"},
		{Key: "trojan", Name: "🐴 TrojanDAO 🐴", Address: "0xcc7dcdb700eed457c8180406d7d699877f4eee24", Unit: "wETH"},
		{Key: "raid", Name: "⚔️ Raid Guild ⚔️", Address: "0xbd6fa666fbb6fdeb4fc5eb36cdd5c87b069b24c1", Unit: "wETH"},
	}
}

// Registry is a closed, validated set of organizations. Safe for concurrent reads.
type Registry struct {
	byKey map[string]model.Organization
	order []string
}

// NewRegistry validates entries and builds the table. Keys must be unique and non-empty,
// addresses must be 20-byte hex.
func NewRegistry(entries []OrganizationConfig) (*Registry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no organizations configured")
	}
	r := &Registry{byKey: make(map[string]model.Organization, len(entries))}
	for i, e := range entries {
		key := strings.TrimSpace(e.Key)
		if key == "" {
			return nil, fmt.Errorf("entry %d: key is required", i)
		}
		if _, dup := r.byKey[key]; dup {
			return nil, fmt.Errorf("entry %d: duplicate key %q", i, key)
		}
		if !common.IsHexAddress(e.Address) {
			return nil, fmt.Errorf("entry %q: invalid address %q", key, e.Address)
		}
		name := e.Name
		if name == "" {
			name = key
		}
		r.byKey[key] = model.Organization{
			Key:     key,
			Name:    name,
			Address: common.HexToAddress(e.Address),
			Unit:    e.Unit,
		}
		r.order = append(r.order, key)
	}
	return r, nil
}

// Get resolves a key.
func (r *Registry) Get(key string) (model.Organization, error) {
	org, ok := r.byKey[key]
	if !ok {
		return model.Organization{}, fmt.Errorf("%w: %q", ErrUnknownOrganization, key)
	}
	return org, nil
}

// List returns organizations in configuration order.
func (r *Registry) List() []model.Organization {
	out := make([]model.Organization, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.byKey[k])
	}
	return out
}

// Keys returns organization keys in configuration order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}

// Package tracer keeps human readable labels for addresses so that logs and
// traces of a development chain can print "Vault (0x5FbD...)" instead of a
// bare address.
package tracer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	devcommon "github.com/TEENet-io/devchain/common"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrEmptyName      = errors.New("empty name tag")
)

type NameTags struct {
	mu   sync.RWMutex
	tags map[common.Address]string
}

func NewNameTags() *NameTags {
	return &NameTags{
		tags: make(map[common.Address]string),
	}
}

// SetNameTag labels address (a hex string, with or without 0x) with name.
// A later call for the same address replaces the label.
func (t *NameTags) SetNameTag(address string, name string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.tags[common.HexToAddress(address)] = name

	return nil
}

func (t *NameTags) NameTag(address common.Address) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	name, ok := t.tags[address]
	return name, ok
}

// Label returns "name (0x...)" for tagged addresses and the checksummed hex
// form otherwise.
func (t *NameTags) Label(address common.Address) string {
	if name, ok := t.NameTag(address); ok {
		return fmt.Sprintf("%s (%s)", name, address.Hex())
	}
	return address.Hex()
}

// ShortLabel is Label with the address cut to "0x5FbD...0aa3", for log fields.
func (t *NameTags) ShortLabel(address common.Address) string {
	short := devcommon.Shorten(address.Hex(), 4)
	if name, ok := t.NameTag(address); ok {
		return fmt.Sprintf("%s (%s)", name, short)
	}
	return short
}

// All returns a copy of the registry.
func (t *NameTags) All() map[common.Address]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[common.Address]string, len(t.tags))
	for addr, name := range t.tags {
		out[addr] = name
	}
	return out
}

// Addresses returns the tagged addresses in ascending byte order.
func (t *NameTags) Addresses() []common.Address {
	t.mu.RLock()
	defer t.mu.RUnlock()

	addrs := make([]common.Address, 0, len(t.tags))
	for addr := range t.tags {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Cmp(addrs[j]) < 0
	})
	return addrs
}

func (t *NameTags) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.tags)
}

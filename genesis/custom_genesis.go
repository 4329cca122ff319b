// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tierpool/tierpool/tier"
)

// CustomGenesis is the user customized deployment, loaded from yaml.
type CustomGenesis struct {
	LaunchTime    uint64    `yaml:"launchTime"`
	BlockInterval uint64    `yaml:"blockInterval"`
	Owner         Address   `yaml:"owner"`
	TrustedSigner Address   `yaml:"trustedSigner"`
	Pool          Params    `yaml:"pool"`
	VaultFunding  *Amount   `yaml:"vaultFunding"`
	Accounts      []Account `yaml:"accounts"`
}

// Params are the pool parameters applied at deployment. Omitted values take the launch defaults.
type Params struct {
	MaxSupply               *Amount `yaml:"maxSupply,omitempty"`
	DistributeTokenPerBlock *Amount `yaml:"distributeTokenPerBlock,omitempty"`
	Boosts                  *Boosts `yaml:"boosts,omitempty"`
}

// Boosts are the per tier weights.
type Boosts struct {
	Common    uint64 `yaml:"common"`
	Rare      uint64 `yaml:"rare"`
	SuperRare uint64 `yaml:"superRare"`
}

// Account is an allocation of reward tokens and collection tokens.
type Account struct {
	Address Address   `yaml:"address"`
	Balance *Amount   `yaml:"balance,omitempty"`
	NFTs    []*Amount `yaml:"nfts,omitempty"`
}

// Address is a yaml friendly tier.Address.
type Address tier.Address

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Address) UnmarshalYAML(node *yaml.Node) error {
	addr, err := tier.ParseAddress(node.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	*a = Address(addr)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (a Address) MarshalYAML() (any, error) {
	return tier.Address(a).String(), nil
}

// Amount is a 256 bit unsigned integer written in decimal or 0x prefixed hex.
type Amount math.HexOrDecimal256

// NewAmount wraps v.
func NewAmount(v *big.Int) *Amount {
	return (*Amount)(new(big.Int).Set(v))
}

// Big returns the value as big.Int. A nil amount is zero.
func (a *Amount) Big() *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(a))
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	v, ok := math.ParseBig256(node.Value)
	if !ok || v.Sign() < 0 {
		return errors.Errorf("line %d: invalid amount %q", node.Line, node.Value)
	}
	*a = Amount(*v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (a *Amount) MarshalYAML() (any, error) {
	return a.Big().String(), nil
}

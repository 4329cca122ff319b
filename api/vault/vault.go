// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/tierpool/tierpool/api/restutil"
	"github.com/tierpool/tierpool/builtin"
	"github.com/tierpool/tierpool/runtime"
	"github.com/tierpool/tierpool/tier"
)

// Summary is the vault owner, token and balance.
type Summary struct {
	Address tier.Address          `json:"address"`
	Owner   tier.Address          `json:"owner"`
	Token   tier.Address          `json:"token"`
	Balance *math.HexOrDecimal256 `json:"balance"`
}

// WhiteList is the allow-list status of an address.
type WhiteList struct {
	Address   tier.Address `json:"address"`
	WhiteList bool         `json:"whiteList"`
}

type Vault struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Vault {
	return &Vault{rt}
}

func (v *Vault) handleGetSummary(w http.ResponseWriter, _ *http.Request) error {
	sum := Summary{Address: builtin.Vault.Address}
	err := v.rt.View(func(c *builtin.Contracts) (err error) {
		if sum.Owner, err = c.Vault.Owner(); err != nil {
			return err
		}
		if sum.Token, err = c.Vault.Token(); err != nil {
			return err
		}
		bal, err := c.Vault.Balance()
		if err != nil {
			return err
		}
		sum.Balance = restutil.Big(bal)
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &sum)
}

func (v *Vault) handleGetWhiteList(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	res := WhiteList{Address: addr}
	err = v.rt.View(func(c *builtin.Contracts) (err error) {
		res.WhiteList, err = c.Vault.IsWhiteList(addr)
		return err
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &res)
}

func (v *Vault) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /vault").
		HandlerFunc(restutil.WrapHandlerFunc(v.handleGetSummary))
	sub.Path("/whitelist/{address}").
		Methods(http.MethodGet).
		Name("GET /vault/whitelist/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(v.handleGetWhiteList))
}

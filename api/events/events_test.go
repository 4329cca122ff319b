// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tierpool/tierpool/api/events"
	"github.com/tierpool/tierpool/test/testchain"
	"github.com/tierpool/tierpool/tier"
)

const limit = 50

func newServer(t *testing.T) (*testchain.Chain, *httptest.Server) {
	c, err := testchain.NewIntegrationTestChain()
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	holder := c.Holder(0)
	ids := c.HolderTokens(0)
	require.NoError(t, c.Stake(holder, ids[:2], []tier.Rarity{tier.Common, tier.Rare}))
	c.SetBlockNumber(4)
	require.NoError(t, c.Claim(holder, ids[0]))
	c.SetBlockNumber(9)
	require.NoError(t, c.Unstake(holder, ids[1]))

	router := mux.NewRouter()
	events.New(c.LogDB(), limit).Mount(router, "/events")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return c, ts
}

func query(t *testing.T, ts *httptest.Server, q string) ([]*events.FilteredEvent, int) {
	res, err := http.Get(ts.URL + "/events?" + q) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	return readEvents(t, res)
}

func post(t *testing.T, ts *httptest.Server, body string) ([]*events.FilteredEvent, int) {
	res, err := http.Post(ts.URL+"/events", "application/json", bytes.NewBufferString(body)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	return readEvents(t, res)
}

func readEvents(t *testing.T, res *http.Response) ([]*events.FilteredEvent, int) {
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if res.StatusCode != http.StatusOK {
		return nil, res.StatusCode
	}
	var fes []*events.FilteredEvent
	require.NoError(t, json.Unmarshal(body, &fes))
	return fes, res.StatusCode
}

func names(fes []*events.FilteredEvent) []string {
	out := make([]string, 0, len(fes))
	for _, fe := range fes {
		out = append(out, fe.Name)
	}
	return out
}

func TestQueryByName(t *testing.T) {
	c, ts := newServer(t)

	fes, code := query(t, ts, "name=Staked")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, fes, 2)
	assert.Equal(t, "common", fes[0].Rarity)
	assert.Equal(t, "rare", fes[1].Rarity)
	assert.Equal(t, c.Holder(0).Address, *fes[0].Actor)
	assert.Equal(t, uint32(0), fes[0].Meta.BlockNumber)
	assert.Equal(t, "1", (*big.Int)(fes[0].TokenID).String())

	fes, code = query(t, ts, "name=Claimed")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, fes, 1)
	assert.Equal(t, uint32(4), fes[0].Meta.BlockNumber)
	// lone common token for four blocks of a pool split 10:15 with a rare token
	assert.Equal(t, "1600000000000000000", (*big.Int)(fes[0].Amount).String())
}

func TestQueryByTokenAndRange(t *testing.T) {
	_, ts := newServer(t)

	// the collection transfer back precedes the pool event
	fes, code := query(t, ts, "tokenId=2&from=1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"Transfer", "Unstaked"}, names(fes))
	assert.Empty(t, fes[0].Rarity)
	assert.Equal(t, "rare", fes[1].Rarity)

	fes, code = query(t, ts, "tokenId=0x2&to=0")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, names(fes), "Staked")
	for _, fe := range fes {
		assert.Equal(t, uint32(0), fe.Meta.BlockNumber)
	}

	fes, code = query(t, ts, "from=4&to=9&order=desc")
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, fes)
	assert.Equal(t, uint32(9), fes[0].Meta.BlockNumber)
	assert.Equal(t, uint32(4), fes[len(fes)-1].Meta.BlockNumber)
}

func TestQueryPaging(t *testing.T) {
	_, ts := newServer(t)

	all, code := query(t, ts, "")
	require.Equal(t, http.StatusOK, code)
	require.Greater(t, len(all), 3)

	page, code := query(t, ts, "offset=1&limit=2")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, page, 2)
	assert.Equal(t, all[1], page[0])
	assert.Equal(t, all[2], page[1])
}

func TestQueryRejects(t *testing.T) {
	_, ts := newServer(t)

	for _, q := range []string{"from=5&to=4", "from=-1", "tokenId=x", "actor=0x1", "order=sideways"} {
		_, code := query(t, ts, q)
		assert.Equal(t, http.StatusBadRequest, code, q)
	}
	_, code := query(t, ts, "limit=51")
	assert.Equal(t, http.StatusForbidden, code)
}

func TestPostFilter(t *testing.T) {
	c, ts := newServer(t)
	actor := strings.ToLower(c.Holder(0).Address.String())

	fes, code := post(t, ts, `{"criteriaSet":[{"name":"Claimed"},{"name":"Unstaked","actor":"`+actor+`"}],"order":"asc"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"Claimed", "Unstaked"}, names(fes))

	_, code = post(t, ts, `{"criteriaSet":[null]}`)
	assert.Equal(t, http.StatusBadRequest, code)

	_, code = post(t, ts, `{"bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, code)

	_, code = post(t, ts, `{"options":{"limit":100}}`)
	assert.Equal(t, http.StatusForbidden, code)
}

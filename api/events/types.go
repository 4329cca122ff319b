// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"
	"math/big"

	ethmath "github.com/ethereum/go-ethereum/common/math"

	"github.com/tierpool/tierpool/api/restutil"
	"github.com/tierpool/tierpool/builtin"
	"github.com/tierpool/tierpool/logdb"
	"github.com/tierpool/tierpool/tier"
)

// LogMeta locates an event.
type LogMeta struct {
	BlockNumber uint32 `json:"blockNumber"`
	Index       uint32 `json:"index"`
}

// FilteredEvent is an indexed contract event.
type FilteredEvent struct {
	Address tier.Address             `json:"address"`
	Name    string                   `json:"name"`
	Actor   *tier.Address            `json:"actor,omitempty"`
	Target  *tier.Address            `json:"target,omitempty"`
	TokenID *ethmath.HexOrDecimal256 `json:"tokenId,omitempty"`
	Rarity  string                   `json:"rarity,omitempty"`
	Amount  *ethmath.HexOrDecimal256 `json:"amount,omitempty"`
	Meta    LogMeta                  `json:"meta"`
}

func optAddress(addr tier.Address) *tier.Address {
	if addr.IsZero() {
		return nil
	}
	return &addr
}

func optBig(v *big.Int) *ethmath.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	return restutil.Big(v)
}

// ConvertEvent converts an indexed event into its json form.
func ConvertEvent(event *logdb.Event) *FilteredEvent {
	fe := &FilteredEvent{
		Address: event.Address,
		Name:    event.Name,
		Actor:   optAddress(event.Actor),
		Target:  optAddress(event.Target),
		TokenID: optBig(event.TokenID),
		Amount:  optBig(event.Amount),
		Meta: LogMeta{
			BlockNumber: event.BlockNumber,
			Index:       event.Index,
		},
	}
	// only pool token events carry a rarity
	if event.Address == builtin.Pool.Address && event.TokenID != nil {
		fe.Rarity = event.Rarity.String()
	}
	return fe
}

type EventCriteria struct {
	Address *tier.Address            `json:"address"`
	Name    string                   `json:"name"`
	Actor   *tier.Address            `json:"actor"`
	TokenID *ethmath.HexOrDecimal256 `json:"tokenId"`
}

type Range struct {
	From *uint32 `json:"from,omitempty"`
	To   *uint32 `json:"to,omitempty"`
}

type Options struct {
	Offset uint64  `json:"offset,omitempty"`
	Limit  *uint64 `json:"limit,omitempty"`
}

func (o *Options) Validate(limit uint64) error {
	if o == nil {
		return nil
	}
	if o.Limit != nil && *o.Limit > limit {
		return restutil.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", limit))
	}
	if o.Offset > math.MaxInt64 {
		return restutil.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	return nil
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet,omitempty"`
	Range       *Range           `json:"range,omitempty"`
	Options     *Options         `json:"options,omitempty"`
	Order       logdb.Order      `json:"order,omitempty"`
}

// Validate checks the filter against the result limit and fills the default options.
func (f *EventFilter) Validate(limit uint64) error {
	if err := f.Options.Validate(limit); err != nil {
		return err
	}
	if f.Range != nil && f.Range.From != nil && f.Range.To != nil && *f.Range.From > *f.Range.To {
		return restutil.BadRequest(fmt.Errorf("range.to must be greater than or equal to range.from"))
	}
	if f.Order != "" && f.Order != logdb.ASC && f.Order != logdb.DESC {
		return restutil.BadRequest(fmt.Errorf("order: invalid value %q", f.Order))
	}
	// reject null element in CriteriaSet, {} matches everything
	for i, criterion := range f.CriteriaSet {
		if criterion == nil {
			return restutil.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
	}
	if f.Options == nil {
		f.Options = &Options{}
	}
	if f.Options.Limit == nil {
		f.Options.Limit = &limit
	}
	return nil
}

// ConvertEventFilter converts a validated filter into a log db query.
func ConvertEventFilter(filter *EventFilter) *logdb.EventFilter {
	f := &logdb.EventFilter{
		Options: &logdb.Options{
			Offset: filter.Options.Offset,
			Limit:  *filter.Options.Limit,
		},
		Order: filter.Order,
	}
	if filter.Range != nil {
		rng := &logdb.Range{From: 0, To: math.MaxUint32}
		if filter.Range.From != nil {
			rng.From = *filter.Range.From
		}
		if filter.Range.To != nil {
			rng.To = *filter.Range.To
		}
		f.Range = rng
	}
	for _, c := range filter.CriteriaSet {
		criteria := &logdb.EventCriteria{
			Address: c.Address,
			Name:    c.Name,
			Actor:   c.Actor,
		}
		if c.TokenID != nil {
			criteria.TokenID = (*big.Int)(c.TokenID)
		}
		f.CriteriaSet = append(f.CriteriaSet, criteria)
	}
	return f
}

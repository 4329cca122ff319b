// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"

	"github.com/tierpool/tierpool/api/events"
	"github.com/tierpool/tierpool/logdb"
)

// eventReader reads each matching event once, starting at block pos. Several
// commits may share a block, so the reader re-reads the last block and skips
// the events already delivered.
type eventReader struct {
	db       *logdb.LogDB
	pos      uint32
	next     uint32 // index of the first undelivered event in block pos
	criteria []*logdb.EventCriteria
}

func newEventReader(db *logdb.LogDB, pos uint32, criteria []*logdb.EventCriteria) *eventReader {
	return &eventReader{db: db, pos: pos, criteria: criteria}
}

// Read returns the undelivered events of blocks pos..head.
func (r *eventReader) Read(ctx context.Context, head uint32) ([]*events.FilteredEvent, error) {
	if head < r.pos {
		return nil, nil
	}
	evs, err := r.db.FilterEvents(ctx, &logdb.EventFilter{
		CriteriaSet: r.criteria,
		Range:       &logdb.Range{From: r.pos, To: head},
	})
	if err != nil {
		return nil, err
	}

	msgs := make([]*events.FilteredEvent, 0, len(evs))
	for _, ev := range evs {
		if ev.BlockNumber == r.pos && ev.Index < r.next {
			continue
		}
		msgs = append(msgs, events.ConvertEvent(ev))
	}

	if head > r.pos {
		r.pos, r.next = head, 0
	}
	if n := len(msgs); n > 0 && msgs[n-1].Meta.BlockNumber == head {
		r.next = msgs[n-1].Meta.Index + 1
	}
	return msgs, nil
}

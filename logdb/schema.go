// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY NOT NULL,
	address BLOB NOT NULL,
	name TEXT NOT NULL,
	actor BLOB,
	target BLOB,
	tokenID BLOB,
	rarity INTEGER NOT NULL,
	amount BLOB
);

CREATE INDEX IF NOT EXISTS event_i0 ON event(address, seq);
CREATE INDEX IF NOT EXISTS event_i1 ON event(name, seq);
CREATE INDEX IF NOT EXISTS event_i2 ON event(actor, seq);
CREATE INDEX IF NOT EXISTS event_i3 ON event(tokenID, seq);
`

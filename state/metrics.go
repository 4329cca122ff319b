// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/tierpool/tierpool/metrics"

var metricStorageWrites = metrics.LazyLoadCounterVec("state_storage_write_count", []string{"op"})

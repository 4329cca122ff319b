// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages contract storage of the pool, the vault and the tokens.
// It follows the flow as bellow:
//
//	        o
//	        |
//	[ revertable state ] -> [ events ]
//	        |
//	 [ stacked map ] -> [ journal ] -> [ stage ] -> [ kv batch ]
//	        |
//	  [ lru cache ]
//	        |
//	  [ kv store ]
//
// All contracts share one State, so reverting to a checkpoint undoes
// the effects of every contract touched since that checkpoint.
package state

// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.
package log

import (
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/holiman/uint256"
)

const (
	timeFormat        = "2006-01-02T15:04:05-0700"
	termTimeFormat    = "01-02|15:04:05.000"
	termMsgJust       = 40
	termCtxMaxPadding = 40
)

func levelColor(l slog.Level) int {
	switch {
	case l >= LevelCrit:
		return 35
	case l >= slog.LevelError:
		return 31
	case l >= slog.LevelWarn:
		return 33
	case l >= slog.LevelInfo:
		return 32
	case l >= slog.LevelDebug:
		return 36
	default:
		return 34
	}
}

func (h *TerminalHandler) format(buf []byte, r slog.Record) []byte {
	lvl := LevelAlignedString(r.Level)
	if h.useColor {
		buf = fmt.Appendf(buf, "\x1b[%dm%s\x1b[0m", levelColor(r.Level), lvl)
	} else {
		buf = append(buf, lvl...)
	}
	buf = append(buf, " ["...)
	buf = r.Time.AppendFormat(buf, termTimeFormat)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)

	if n := utf8.RuneCountInString(r.Message); n < termMsgJust && (r.NumAttrs() > 0 || len(h.attrs) > 0) {
		buf = append(buf, strings.Repeat(" ", termMsgJust-n)...)
	}

	appendAttr := func(a slog.Attr) bool {
		buf = append(buf, ' ')
		key := a.Key
		if h.useColor {
			key = fmt.Sprintf("\x1b[%dm%s\x1b[0m", levelColor(r.Level), key)
		}
		buf = append(buf, key...)
		buf = append(buf, '=')
		buf = append(buf, escape(formatValue(a.Value))...)
		return true
	}
	for _, a := range h.attrs {
		appendAttr(a)
	}
	r.Attrs(appendAttr)
	return append(buf, '\n')
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', 3, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(timeFormat)
	}
	switch x := v.Any().(type) {
	case nil:
		return "<nil>"
	case error:
		return x.Error()
	case *big.Int:
		return bigString(x)
	case *uint256.Int:
		if x == nil {
			return "<nil>"
		}
		return x.Dec()
	case time.Time:
		return x.Format(timeFormat)
	case fmt.Stringer:
		if isNil(x) {
			return "<nil>"
		}
		return x.String()
	default:
		return fmt.Sprintf("%+v", x)
	}
}

// escape quotes values which would otherwise break the key=value layout.
func escape(s string) string {
	if s == "" {
		return `""`
	}
	if len(s) > termCtxMaxPadding*4 {
		s = s[:termCtxMaxPadding*4] + "…"
	}
	if strings.ContainsAny(s, " =\"\t\r\n") {
		return strconv.Quote(s)
	}
	return s
}

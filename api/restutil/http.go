// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/tierpool/tierpool/log"
	"github.com/tierpool/tierpool/reverts"
	"github.com/tierpool/tierpool/tier"
)

var logger = log.WithContext("pkg", "restutil")

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string { return e.cause.Error() }

func (e *httpError) Unwrap() error { return e.cause }

// HTTPError attaches a response status to cause.
func HTTPError(cause error, status int) error {
	return &httpError{cause: cause, status: status}
}

func BadRequest(cause error) error { return HTTPError(cause, http.StatusBadRequest) }

func Forbidden(cause error) error { return HTTPError(cause, http.StatusForbidden) }

// FromRevert maps a contract error to its http status. Input errors are bad requests,
// authorization errors are forbidden and anything else is returned as is.
func FromRevert(err error) error {
	switch {
	case reverts.IsInputErr(err):
		return BadRequest(err)
	case reverts.IsUnauthorized(err):
		return Forbidden(err)
	default:
		return err
	}
}

// HandlerFunc like http.HandlerFunc, but it returns an error.
// If the returned error is httpError type, httpError.status will be responded,
// otherwise http.StatusInternalServerError responded.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc convert HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		var he *httpError
		if errors.As(err, &he) {
			if he.cause != nil {
				http.Error(w, he.cause.Error(), he.status)
			} else {
				w.WriteHeader(he.status)
			}
			return
		}
		logger.Debug("all errors should be wrapped in httpError", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parse a JSON object using strict mode.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// ParseAddress parses a path or query value as an address.
func ParseAddress(name, value string) (tier.Address, error) {
	addr, err := tier.ParseAddress(value)
	if err != nil {
		return tier.Address{}, BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

// ParseTokenID parses a path or query value as a 256 bit unsigned id, decimal or 0x prefixed hex.
func ParseTokenID(name, value string) (*big.Int, error) {
	id, ok := math.ParseBig256(value)
	if !ok || id.Sign() < 0 {
		return nil, BadRequest(errors.Errorf("%s: invalid token id %q", name, value))
	}
	return id, nil
}

// Big converts v into its JSON form.
func Big(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(v)
}

// M shortcut for type map[string]any.
type M map[string]any

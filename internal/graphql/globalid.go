// Package graphql holds the bits of the API layer the filters depend on:
// relay-style global IDs and the user-facing query error.
package graphql

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Error is returned to the API caller as a top-level GraphQL error.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewError builds an Error from a format string.
func NewError(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// ToGlobalID encodes a type name and primary key as an opaque ID.
func ToGlobalID(typename string, pk uint) string {
	return base64.StdEncoding.EncodeToString([]byte(typename + ":" + strconv.FormatUint(uint64(pk), 10)))
}

// FromGlobalID splits an opaque ID into its type name and raw primary key.
func FromGlobalID(id string) (string, string, error) {
	raw, err := base64.StdEncoding.DecodeString(id)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(id)
		if err != nil {
			return "", "", errors.Wrap(err, "decode global id")
		}
	}
	typename, pk, ok := strings.Cut(string(raw), ":")
	if !ok || typename == "" || pk == "" {
		return "", "", errors.Errorf("malformed global id %q", id)
	}
	return typename, pk, nil
}

// FromGlobalIDOrError decodes id and checks that it names onlyType (when
// non-empty) and carries a numeric primary key.
func FromGlobalIDOrError(id, onlyType string) (string, uint, error) {
	typename, rawPK, err := FromGlobalID(id)
	if err != nil {
		return "", 0, NewError("Couldn't resolve id: %s.", id)
	}
	if onlyType != "" && typename != onlyType {
		return "", 0, NewError("Must receive a %s id.", onlyType)
	}
	pk, err := strconv.ParseUint(rawPK, 10, 64)
	if err != nil {
		return "", 0, NewError("Couldn't resolve id: %s.", id)
	}
	return typename, uint(pk), nil
}

// ResolveGlobalIDsToPrimaryKeys decodes ids, all of which must be of
// onlyType (or of one common type when onlyType is empty).
func ResolveGlobalIDsToPrimaryKeys(ids []string, onlyType string) (string, []uint, error) {
	typename := onlyType
	pks := make([]uint, 0, len(ids))
	for _, id := range ids {
		got, rawPK, err := FromGlobalID(id)
		if err != nil {
			return "", nil, NewError("Couldn't resolve id: %s.", id)
		}
		if typename != "" && got != typename {
			return "", nil, NewError("Must receive %s id: %s.", typename, id)
		}
		pk, err := strconv.ParseUint(rawPK, 10, 64)
		if err != nil {
			return "", nil, NewError("Couldn't resolve id: %s.", id)
		}
		typename = got
		pks = append(pks, uint(pk))
	}
	return typename, pks, nil
}

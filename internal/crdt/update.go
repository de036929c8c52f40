package crdt

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/five82/fontshelf/internal/font"
)

// ErrMalformed marks a stored payload that Decode cannot turn into an update.
var ErrMalformed = errors.New("malformed update")

// OpKind names a register write.
type OpKind string

const (
	OpInsert   OpKind = "insert"
	OpDelete   OpKind = "delete"
	OpMeta     OpKind = "meta"
	OpFavorite OpKind = "favorite"
	OpOrder    OpKind = "order"
)

// Meta is the enumeration-sourced part of a record.
type Meta struct {
	DisplayName string `json:"name"`
	Family      string `json:"family"`
	Style       string `json:"style"`
}

func metaOf(r font.Record) Meta {
	return Meta{DisplayName: r.DisplayName, Family: r.Family, Style: r.Style}
}

// Op is a single register write. Insert carries the full record; the other
// kinds only carry the field they touch.
type Op struct {
	Kind     OpKind `json:"k"`
	ID       string `json:"id"`
	Stamp    Stamp  `json:"s"`
	Meta     *Meta  `json:"m,omitempty"`
	Favorite bool   `json:"f,omitempty"`
	Order    *int   `json:"o,omitempty"`
}

// Update is a committed transaction.
type Update struct {
	Replica string `json:"replica"`
	Ops     []Op   `json:"ops"`
}

// Validate rejects updates that cannot be applied.
func (u Update) Validate() error {
	for i, op := range u.Ops {
		if op.ID == "" {
			return fmt.Errorf("op %d: empty id", i)
		}
		if op.Stamp.Clock == 0 {
			return fmt.Errorf("op %d (%s): zero clock", i, op.ID)
		}
		switch op.Kind {
		case OpInsert, OpMeta:
			if op.Meta == nil {
				return fmt.Errorf("op %d (%s): %s without meta", i, op.ID, op.Kind)
			}
		case OpDelete, OpFavorite, OpOrder:
		default:
			return fmt.Errorf("op %d (%s): unknown kind %q", i, op.ID, op.Kind)
		}
	}
	return nil
}

// Encode serializes the update for storage.
func Encode(u Update) ([]byte, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("encode update: %w", err)
	}
	return data, nil
}

// Decode parses a stored update and validates it.
func Decode(data []byte) (Update, error) {
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		return Update{}, fmt.Errorf("decode update: %w: %w", ErrMalformed, err)
	}
	if err := u.Validate(); err != nil {
		return Update{}, fmt.Errorf("decode update: %w: %w", ErrMalformed, err)
	}
	return u, nil
}

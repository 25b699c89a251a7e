// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultSize is the page size when the caller does not ask for one.
	DefaultSize = 25
	// MaxSize caps the size query parameter.
	MaxSize = 100
)

// Direction is the direction a cursor walks the sort order.
type Direction int

const (
	Forward  Direction = iota // ascending, rows after the cursor
	Backward                  // descending, rows before the cursor
)

// Params is a page request: at most one of Before and After is honored,
// Before winning when both are set.
type Params struct {
	Before string
	After  string
	Size   int
}

// FromRequest reads before, after and size from the query string. size is
// clamped to 1..MaxSize and defaults to DefaultSize.
func FromRequest(r *http.Request) Params {
	p := Params{
		Before: query.Get(r, "before"),
		After:  query.Get(r, "after"),
		Size:   DefaultSize,
	}
	if s := query.Get(r, "size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			p.Size = min(n, MaxSize)
		}
	}
	return p
}

// Keyset is a decoded page request ready to apply to a Find.
type Keyset struct {
	Direction Direction
	Size      int
	cursor    *wafflemongo.Cursor
}

// Keyset decodes the cursor. An undecodable cursor is treated as absent so
// a stale link lands on the first page instead of failing.
func (p Params) Keyset() Keyset {
	k := Keyset{Direction: Forward, Size: p.Size}
	if k.Size <= 0 {
		k.Size = DefaultSize
	}
	raw := p.After
	if p.Before != "" {
		k.Direction = Backward
		raw = p.Before
	}
	if raw != "" {
		if c, ok := wafflemongo.DecodeCursor(raw); ok {
			k.cursor = &c
		} else {
			k.Direction = Forward
		}
	}
	return k
}

// HasCursor reports whether the request continues from a previous page.
func (k Keyset) HasCursor() bool { return k.cursor != nil }

// ApplyToFind sorts on sortField then _id and fetches one extra row so Trim
// can tell whether another page exists.
func (k Keyset) ApplyToFind(find *options.FindOptions, sortField string) {
	order := 1
	if k.Direction == Backward {
		order = -1
	}
	find.SetSort(bson.D{
		{Key: sortField, Value: order},
		{Key: "_id", Value: order},
	}).SetLimit(int64(k.Size + 1))
}

// Window returns the filter clause selecting rows past the cursor, or nil
// on the first page.
func (k Keyset) Window(sortField string) bson.M {
	if k.cursor == nil {
		return nil
	}
	dir := "gt"
	if k.Direction == Backward {
		dir = "lt"
	}
	return wafflemongo.KeysetWindow(sortField, dir, k.cursor.CI, k.cursor.ID)
}

// Restrict combines filter with the cursor window. filter may already carry
// an $or, so the two are joined under $and.
func (k Keyset) Restrict(filter bson.M, sortField string) bson.M {
	w := k.Window(sortField)
	if w == nil {
		return filter
	}
	return bson.M{"$and": bson.A{filter, w}}
}

// Page reports the neighbours of a trimmed page.
type Page struct {
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// Trim puts rows fetched with ApplyToFind back into ascending order and
// drops the look-ahead row.
func Trim[T any](rows *[]T, k Keyset) Page {
	var p Page
	if k.Direction == Backward {
		Reverse(*rows)
		if len(*rows) > k.Size {
			*rows = (*rows)[1:]
			p.HasPrev = true
		}
		p.HasNext = true
		return p
	}
	if len(*rows) > k.Size {
		*rows = (*rows)[:k.Size]
		p.HasNext = true
	}
	p.HasPrev = k.HasCursor()
	return p
}

// Reverse reverses a slice in place.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// Cursors encodes the first and last rows of a page. keyFn must return the
// value of the field the page was sorted on.
func Cursors[T any](rows []T, keyFn func(T) string, idFn func(T) primitive.ObjectID) (prev, next string) {
	if len(rows) == 0 {
		return "", ""
	}
	first, last := rows[0], rows[len(rows)-1]
	return wafflemongo.EncodeCursor(keyFn(first), idFn(first)),
		wafflemongo.EncodeCursor(keyFn(last), idFn(last))
}

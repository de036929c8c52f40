// Package font holds the face records shared by the store, the views and the host adapter.
package font

// Record is one concrete font face as kept in the replicated store.
//
// ID is the face's PostScript name and never changes once created. DisplayName,
// Family and Style come from the enumeration and are immutable as well. Favorite
// and FavoriteOrder are the only fields a user mutates; FavoriteOrder carries no
// meaning while Favorite is false.
type Record struct {
	ID            string `json:"id"`
	DisplayName   string `json:"name"`
	Family        string `json:"family"`
	Style         string `json:"style"`
	Favorite      bool   `json:"favorite,omitempty"`
	FavoriteOrder *int   `json:"favoriteOrder,omitempty"`
}

// Rank returns the explicit favorite position. ok is false for non-favorites and
// for favorites that were never ordered.
func (r Record) Rank() (rank int, ok bool) {
	if !r.Favorite || r.FavoriteOrder == nil {
		return 0, false
	}
	return *r.FavoriteOrder, true
}

// Clone returns a copy that shares no memory with r.
func (r Record) Clone() Record {
	if r.FavoriteOrder != nil {
		order := *r.FavoriteOrder
		r.FavoriteOrder = &order
	}
	return r
}

// SameMeta reports whether the enumeration-sourced fields match.
func (r Record) SameMeta(other Record) bool {
	return r.DisplayName == other.DisplayName &&
		r.Family == other.Family &&
		r.Style == other.Style
}

// Order is a small helper for building FavoriteOrder values.
func Order(n int) *int {
	return &n
}

// CloneRecords copies a slice of records.
func CloneRecords(records []Record) []Record {
	if len(records) == 0 {
		return nil
	}
	dup := make([]Record, len(records))
	for i, r := range records {
		dup[i] = r.Clone()
	}
	return dup
}

// Descriptor is a face as reported by the host before it enters the store.
// Path and Index locate the binary; Index is the face number inside a
// collection file and zero otherwise.
type Descriptor struct {
	ID          string
	DisplayName string
	Family      string
	Style       string
	Path        string
	Index       int
}

// Record converts the descriptor into a fresh, non-favorite record.
func (d Descriptor) Record() Record {
	return Record{
		ID:          d.ID,
		DisplayName: d.DisplayName,
		Family:      d.Family,
		Style:       d.Style,
	}
}

// Records converts descriptors in order.
func Records(descs []Descriptor) []Record {
	out := make([]Record, 0, len(descs))
	for _, d := range descs {
		out = append(out, d.Record())
	}
	return out
}

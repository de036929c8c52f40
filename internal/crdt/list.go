package crdt

import (
	"sort"

	"github.com/five82/fontshelf/internal/font"
)

type element struct {
	id       string
	inserted bool
	position Stamp
	present  register[bool]
	meta     register[Meta]
	favorite register[bool]
	order    register[*int]
}

func (e *element) visible() bool {
	return e.inserted && e.present.value
}

func (e *element) record() font.Record {
	return font.Record{
		ID:            e.id,
		DisplayName:   e.meta.value.DisplayName,
		Family:        e.meta.value.Family,
		Style:         e.meta.value.Style,
		Favorite:      e.favorite.value,
		FavoriteOrder: cloneInt(e.order.value),
	}
}

// Doc is one replica of the font list.
type Doc struct {
	replica string
	clock   uint64
	elems   map[string]*element
}

// New creates an empty document owned by replica.
func New(replica string) *Doc {
	return &Doc{
		replica: replica,
		elems:   make(map[string]*element),
	}
}

// Replica returns the id stamped on local writes.
func (d *Doc) Replica() string {
	return d.replica
}

// Clock returns the Lamport clock.
func (d *Doc) Clock() uint64 {
	return d.clock
}

// Apply merges an update from any replica. It reports whether any register moved.
func (d *Doc) Apply(u Update) bool {
	changed := false
	for _, op := range u.Ops {
		if d.apply(op) {
			changed = true
		}
		if op.Stamp.Clock > d.clock {
			d.clock = op.Stamp.Clock
		}
	}
	return changed
}

func (d *Doc) elem(id string) *element {
	e, ok := d.elems[id]
	if !ok {
		e = &element{id: id}
		d.elems[id] = e
	}
	return e
}

func (d *Doc) apply(op Op) bool {
	e := d.elem(op.ID)
	switch op.Kind {
	case OpInsert:
		changed := false
		if op.Stamp.After(e.position) {
			e.position = op.Stamp
			e.inserted = true
			changed = true
		}
		if e.present.set(true, op.Stamp) {
			changed = true
		}
		if op.Meta != nil && e.meta.set(*op.Meta, op.Stamp) {
			changed = true
		}
		if e.favorite.set(op.Favorite, op.Stamp) {
			changed = true
		}
		if e.order.set(cloneInt(op.Order), op.Stamp) {
			changed = true
		}
		return changed
	case OpDelete:
		return e.present.set(false, op.Stamp)
	case OpMeta:
		if op.Meta == nil {
			return false
		}
		return e.meta.set(*op.Meta, op.Stamp)
	case OpFavorite:
		return e.favorite.set(op.Favorite, op.Stamp)
	case OpOrder:
		return e.order.set(cloneInt(op.Order), op.Stamp)
	}
	return false
}

// Len counts visible records.
func (d *Doc) Len() int {
	n := 0
	for _, e := range d.elems {
		if e.visible() {
			n++
		}
	}
	return n
}

// Get returns the visible record with id.
func (d *Doc) Get(id string) (font.Record, bool) {
	e, ok := d.elems[id]
	if !ok || !e.visible() {
		return font.Record{}, false
	}
	return e.record(), true
}

// Records returns visible records in list order.
func (d *Doc) Records() []font.Record {
	visible := make([]*element, 0, len(d.elems))
	for _, e := range d.elems {
		if e.visible() {
			visible = append(visible, e)
		}
	}
	sort.Slice(visible, func(i, j int) bool {
		return visible[j].position.After(visible[i].position)
	})
	out := make([]font.Record, len(visible))
	for i, e := range visible {
		out[i] = e.record()
	}
	return out
}

// Snapshot encodes the whole document, tombstones included, as a single
// update. Applying it to an empty document reproduces every register.
func (d *Doc) Snapshot() Update {
	ids := make([]string, 0, len(d.elems))
	for id := range d.elems {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	u := Update{Replica: d.replica}
	for _, id := range ids {
		e := d.elems[id]
		if e.inserted {
			meta := e.meta.value
			u.Ops = append(u.Ops, Op{
				Kind:     OpInsert,
				ID:       id,
				Stamp:    e.position,
				Meta:     &meta,
				Favorite: e.favorite.value,
				Order:    cloneInt(e.order.value),
			})
		}
		if e.present.stamp.After(e.position) && !e.present.value {
			u.Ops = append(u.Ops, Op{Kind: OpDelete, ID: id, Stamp: e.present.stamp})
		}
		if e.meta.stamp.After(e.position) {
			meta := e.meta.value
			u.Ops = append(u.Ops, Op{Kind: OpMeta, ID: id, Stamp: e.meta.stamp, Meta: &meta})
		}
		if e.favorite.stamp.After(e.position) {
			u.Ops = append(u.Ops, Op{Kind: OpFavorite, ID: id, Stamp: e.favorite.stamp, Favorite: e.favorite.value})
		}
		if e.order.stamp.After(e.position) {
			u.Ops = append(u.Ops, Op{Kind: OpOrder, ID: id, Stamp: e.order.stamp, Order: cloneInt(e.order.value)})
		}
	}
	return u
}

// Txn batches local writes. Ops see the document as it was when the
// transaction began; nothing is visible until Commit.
type Txn struct {
	doc *Doc
	ops []Op
}

// Begin starts a transaction.
func (d *Doc) Begin() *Txn {
	return &Txn{doc: d}
}

func (t *Txn) next() Stamp {
	t.doc.clock++
	return Stamp{Clock: t.doc.clock, Replica: t.doc.replica}
}

// Insert adds r, or re-inserts it at the end of the list when it already exists.
func (t *Txn) Insert(r font.Record) {
	meta := metaOf(r)
	t.ops = append(t.ops, Op{
		Kind:     OpInsert,
		ID:       r.ID,
		Stamp:    t.next(),
		Meta:     &meta,
		Favorite: r.Favorite,
		Order:    cloneInt(r.FavoriteOrder),
	})
}

// Delete removes id.
func (t *Txn) Delete(id string) {
	t.ops = append(t.ops, Op{Kind: OpDelete, ID: id, Stamp: t.next()})
}

// SetMeta rewrites the enumeration-sourced fields of id in place.
func (t *Txn) SetMeta(r font.Record) {
	meta := metaOf(r)
	t.ops = append(t.ops, Op{Kind: OpMeta, ID: r.ID, Stamp: t.next(), Meta: &meta})
}

// SetFavorite writes the favorite flag.
func (t *Txn) SetFavorite(id string, favorite bool) {
	t.ops = append(t.ops, Op{Kind: OpFavorite, ID: id, Stamp: t.next(), Favorite: favorite})
}

// SetOrder writes the favorite rank; nil clears it.
func (t *Txn) SetOrder(id string, order *int) {
	t.ops = append(t.ops, Op{Kind: OpOrder, ID: id, Stamp: t.next(), Order: cloneInt(order)})
}

// Len returns the number of pending ops.
func (t *Txn) Len() int {
	return len(t.ops)
}

// Commit applies the pending ops. ok is false for an empty transaction.
func (t *Txn) Commit() (u Update, ok bool) {
	if len(t.ops) == 0 {
		return Update{}, false
	}
	u = Update{Replica: t.doc.replica, Ops: t.ops}
	t.ops = nil
	t.doc.Apply(u)
	return u, true
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

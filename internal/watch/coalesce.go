package watch

// The coalescing table. Within one debounce window all raw events for a
// path fold pairwise, oldest to newest, into at most one emitted event:
//
//	create + modify      -> create
//	create + remove      -> (no event; the path never outlived the window)
//	create, after c+r    -> create
//	modify + modify      -> modify
//	modify + remove      -> remove
//	remove + create      -> modify (content replaced)
//	remove + remove      -> remove
//	rename_from + create -> modify (replaced by a renamed-in file)
//	rename_from + remove -> remove
//	attribute-only alone -> modify with the attrib flag
//	attribute-only after any -> prior kind, attrib flag set
//
// The table is deterministic; tests pin it exactly.

// kindNone is the tombstone for create-then-remove: the entry stays in the
// buffer so later events in the same window still fold correctly, but it
// emits nothing.
const kindNone Kind = ""

type pending struct {
	kind   Kind
	attrib bool
}

// buffer accumulates raw events per path for one debounce window. It is
// only touched from the session goroutine, so it needs no lock. order
// preserves first-seen order so flushes are stable.
type buffer struct {
	pending map[string]*pending
	order   []string
}

func newBuffer() *buffer {
	return &buffer{pending: make(map[string]*pending)}
}

// add folds one raw event into the window.
func (b *buffer) add(path string, kind Kind, attribOnly bool) {
	p, ok := b.pending[path]
	if !ok {
		p = &pending{kind: kindNone}
		b.pending[path] = p
		b.order = append(b.order, path)
	}

	if attribOnly {
		p.attrib = true
		if p.kind == kindNone {
			p.kind = KindModify
		}
		return
	}

	p.kind = fold(p.kind, kind)
}

func fold(prev, next Kind) Kind {
	switch prev {
	case kindNone:
		return next
	case KindCreate:
		switch next {
		case KindRemove, KindRenameFrom:
			return kindNone
		default:
			return KindCreate
		}
	case KindModify:
		switch next {
		case KindRemove, KindRenameFrom:
			return KindRemove
		default:
			return KindModify
		}
	case KindRemove, KindRenameFrom:
		switch next {
		case KindCreate, KindModify, KindRenameTo:
			return KindModify
		case KindRemove:
			return KindRemove
		default:
			return prev
		}
	default:
		return next
	}
}

// flush drains the window into an emission batch, skipping tombstones.
func (b *buffer) flush() Batch {
	if len(b.order) == 0 {
		return nil
	}
	batch := make(Batch, 0, len(b.order))
	for _, path := range b.order {
		p := b.pending[path]
		if p.kind == kindNone && !p.attrib {
			continue
		}
		kind := p.kind
		if kind == kindNone {
			// Tombstone that still saw an attribute change: the path is
			// gone, nothing to report.
			continue
		}
		batch = append(batch, Event{Path: path, Kind: kind, Attrib: p.attrib})
	}
	b.pending = make(map[string]*pending)
	b.order = b.order[:0]
	if len(batch) == 0 {
		return nil
	}
	return batch
}

// empty reports whether the window holds nothing.
func (b *buffer) empty() bool {
	return len(b.order) == 0
}

package watch

import "testing"

func flushOne(b *buffer, path string) (Event, bool) {
	batch := b.flush()
	for _, ev := range batch {
		if ev.Path == path {
			return ev, true
		}
	}
	return Event{}, false
}

func TestCreateThenModifyIsCreate(t *testing.T) {
	b := newBuffer()
	b.add("/p", KindCreate, false)
	b.add("/p", KindModify, false)

	ev, ok := flushOne(b, "/p")
	if !ok || ev.Kind != KindCreate {
		t.Errorf("create+modify = %+v, want one create", ev)
	}
}

func TestCreateThenRemoveEmitsNothing(t *testing.T) {
	b := newBuffer()
	b.add("/p", KindCreate, false)
	b.add("/p", KindRemove, false)

	if batch := b.flush(); batch != nil {
		t.Errorf("create+remove should emit nothing, got %+v", batch)
	}
}

func TestCreateAfterTombstoneIsCreate(t *testing.T) {
	b := newBuffer()
	b.add("/p", KindCreate, false)
	b.add("/p", KindRemove, false)
	b.add("/p", KindCreate, false)

	ev, ok := flushOne(b, "/p")
	if !ok || ev.Kind != KindCreate {
		t.Errorf("create+remove+create = %+v, want create", ev)
	}
}

func TestModifyThenRemoveIsRemove(t *testing.T) {
	b := newBuffer()
	b.add("/p", KindModify, false)
	b.add("/p", KindRemove, false)

	ev, ok := flushOne(b, "/p")
	if !ok || ev.Kind != KindRemove {
		t.Errorf("modify+remove = %+v, want remove", ev)
	}
}

func TestRemoveThenCreateIsModify(t *testing.T) {
	b := newBuffer()
	b.add("/p", KindRemove, false)
	b.add("/p", KindCreate, false)

	ev, ok := flushOne(b, "/p")
	if !ok || ev.Kind != KindModify {
		t.Errorf("remove+create = %+v, want modify", ev)
	}
}

func TestRenameFromThenCreateIsModify(t *testing.T) {
	b := newBuffer()
	b.add("/p", KindRenameFrom, false)
	b.add("/p", KindCreate, false)

	ev, ok := flushOne(b, "/p")
	if !ok || ev.Kind != KindModify {
		t.Errorf("rename_from+create = %+v, want modify", ev)
	}
}

func TestRenameFromThenRemoveIsRemove(t *testing.T) {
	b := newBuffer()
	b.add("/p", KindRenameFrom, false)
	b.add("/p", KindRemove, false)

	ev, ok := flushOne(b, "/p")
	if !ok || ev.Kind != KindRemove {
		t.Errorf("rename_from+remove = %+v, want remove", ev)
	}
}

func TestRenameFromAloneStays(t *testing.T) {
	b := newBuffer()
	b.add("/p", KindRenameFrom, false)

	ev, ok := flushOne(b, "/p")
	if !ok || ev.Kind != KindRenameFrom {
		t.Errorf("lone rename_from = %+v", ev)
	}
}

func TestAttribOnlyAloneIsModifyWithFlag(t *testing.T) {
	b := newBuffer()
	b.add("/p", KindModify, true)

	ev, ok := flushOne(b, "/p")
	if !ok || ev.Kind != KindModify || !ev.Attrib {
		t.Errorf("attrib-only = %+v, want modify with attrib", ev)
	}
}

func TestAttribAfterCreateKeepsCreate(t *testing.T) {
	b := newBuffer()
	b.add("/p", KindCreate, false)
	b.add("/p", KindModify, true)

	ev, ok := flushOne(b, "/p")
	if !ok || ev.Kind != KindCreate || !ev.Attrib {
		t.Errorf("create+attrib = %+v, want create with attrib flag", ev)
	}
}

func TestRepeatedModifyCoalesces(t *testing.T) {
	b := newBuffer()
	for i := 0; i < 5; i++ {
		b.add("/p", KindModify, false)
	}

	batch := b.flush()
	if len(batch) != 1 || batch[0].Kind != KindModify {
		t.Errorf("5x modify = %+v, want one modify", batch)
	}
}

func TestFlushPreservesFirstSeenOrder(t *testing.T) {
	b := newBuffer()
	b.add("/b", KindModify, false)
	b.add("/a", KindCreate, false)
	b.add("/b", KindModify, false)

	batch := b.flush()
	if len(batch) != 2 || batch[0].Path != "/b" || batch[1].Path != "/a" {
		t.Errorf("order = %+v, want /b then /a", batch)
	}
}

func TestFlushResetsWindow(t *testing.T) {
	b := newBuffer()
	b.add("/p", KindCreate, false)
	b.flush()

	if !b.empty() {
		t.Error("buffer should be empty after flush")
	}
	// A remove in the next window is independent of the flushed create.
	b.add("/p", KindRemove, false)
	ev, ok := flushOne(b, "/p")
	if !ok || ev.Kind != KindRemove {
		t.Errorf("post-flush remove = %+v, want remove", ev)
	}
}

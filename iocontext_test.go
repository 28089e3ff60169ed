// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson_test

import (
	"testing"

	"github.com/creachadair/cirjson"
	"github.com/creachadair/mds/mtest"
)

func TestBufferRecycler(t *testing.T) {
	r := cirjson.NewBufferRecycler()

	buf := r.AllocBytes(cirjson.ReadIOBuffer, 0)
	if len(buf) < 8000 {
		t.Errorf("AllocBytes: got length %d, want at least 8000", len(buf))
	}
	if big := r.AllocBytes(cirjson.TextSegmentBuffer, 100000); len(big) < 100000 {
		t.Errorf("AllocBytes: got length %d, want at least 100000", len(big))
	}
	r.ReleaseBytes(cirjson.ReadIOBuffer, buf)
	r.ReleaseBytes(cirjson.ReadIOBuffer, nil) // no effect

	runes := r.AllocRunes(cirjson.NameCopyBuffer, 10)
	if len(runes) < 200 {
		t.Errorf("AllocRunes: got length %d, want at least 200", len(runes))
	}
	r.ReleaseRunes(cirjson.NameCopyBuffer, runes)
}

func TestIOContext(t *testing.T) {
	content := cirjson.NewContentReference("input", 0, 5, cirjson.DefaultErrorReport)
	c := cirjson.NewIOContext(nil, content, true)
	if c.Recycler() == nil {
		t.Fatal("NewIOContext did not create a recycler")
	}
	if !c.IsResourceManaged() {
		t.Error("IsResourceManaged: got false, want true")
	}
	if got := c.ReadConstraints(); got != cirjson.DefaultReadConstraints {
		t.Errorf("ReadConstraints: got %+v, want defaults", got)
	}
	c.SetWriteConstraints(cirjson.WriteConstraints{MaxNestingDepth: 5})
	if got := c.WriteConstraints().MaxNestingDepth; got != 5 {
		t.Errorf("WriteConstraints: got depth %d, want 5", got)
	}

	t.Run("AllocTwice", func(t *testing.T) {
		c := cirjson.NewIOContext(nil, content, false)
		c.AllocBytes(cirjson.WriteConcatBuffer, 0)
		mtest.MustPanic(t, func() { c.AllocBytes(cirjson.WriteConcatBuffer, 0) })

		c.AllocRunes(cirjson.TokenBuffer, 0)
		mtest.MustPanic(t, func() { c.AllocRunes(cirjson.TokenBuffer, 0) })
	})

	t.Run("ReleaseForeign", func(t *testing.T) {
		c := cirjson.NewIOContext(nil, content, false)
		mtest.MustPanic(t, func() { c.ReleaseBytes(cirjson.Base64CodecBuffer, make([]byte, 10)) })

		c.AllocBytes(cirjson.Base64CodecBuffer, 0)
		mtest.MustPanic(t, func() { c.ReleaseBytes(cirjson.Base64CodecBuffer, make([]byte, 10)) })

		mtest.MustPanic(t, func() { c.ReleaseRunes(cirjson.ConcatBuffer, make([]rune, 10)) })
	})

	t.Run("ReleaseAndRealloc", func(t *testing.T) {
		c := cirjson.NewIOContext(nil, content, false)
		buf := c.AllocBytes(cirjson.ReadIOBuffer, 0)
		c.ReleaseBytes(cirjson.ReadIOBuffer, buf[:10])
		c.AllocBytes(cirjson.ReadIOBuffer, 0) // OK after release

		c.Release()
		c.Release() // idempotent
		c.AllocBytes(cirjson.ReadIOBuffer, 0)
		c.AllocRunes(cirjson.ConcatBuffer, 0)
		c.Release()
	})
}

func TestFactorySharesRecycler(t *testing.T) {
	f := cirjson.NewFactory()
	for range 3 {
		p := f.NewParserFromString(`{"__cirJsonId__":"0","a":["1",2]}`)
		for {
			tok, err := p.NextToken()
			if err != nil {
				t.Fatalf("NextToken: %v", err)
			} else if tok == cirjson.None {
				break
			}
		}
		if !p.IsClosed() {
			t.Error("Parser not closed at end of input")
		}
	}
	if f.Recycler() == nil {
		t.Error("Factory has no recycler")
	}
}

// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package bytebuf_test

import (
	"bytes"
	"testing"

	"github.com/creachadair/cirjson/internal/bytebuf"
	"github.com/google/go-cmp/cmp"
)

func TestBuilder(t *testing.T) {
	b := bytebuf.New(make([]byte, 16))

	var want []byte
	for i := range 5000 {
		switch i % 3 {
		case 0:
			b.Append(byte(i))
			want = append(want, byte(i))
		case 1:
			b.AppendTwoBytes(i)
			want = append(want, byte(i>>8), byte(i))
		case 2:
			b.AppendThreeBytes(i << 4)
			want = append(want, byte(i>>12), byte(i>>4), byte(i<<4))
		}
	}
	blob := bytes.Repeat([]byte("0123456789"), 30000)
	b.Write(blob)
	want = append(want, blob...)

	if got := b.Len(); got != len(want) {
		t.Errorf("Len: got %d, want %d", got, len(want))
	}
	if diff := cmp.Diff(want, b.Bytes()); diff != "" {
		t.Errorf("Bytes (-want, +got):\n%s", diff)
	}

	b.Reset()
	if got := b.Len(); got != 0 {
		t.Errorf("Len after reset: got %d, want 0", got)
	}
	b.Write([]byte("ok"))
	if got := string(b.Bytes()); got != "ok" {
		t.Errorf("Bytes after reset: got %q, want ok", got)
	}
	if cur := b.Release(); len(cur) != 0 {
		t.Errorf("Release: got %q, want empty", cur)
	}
	if got := b.Len(); got != 0 {
		t.Errorf("Len after release: got %d, want 0", got)
	}
}

func TestBuilderRelease(t *testing.T) {
	first := make([]byte, 0, 64)
	b := bytebuf.New(first)
	b.Write(bytes.Repeat([]byte("x"), 1000))
	if got := b.Len(); got != 1000 {
		t.Fatalf("Len: got %d, want 1000", got)
	}

	b.Reset()
	b.Write([]byte("abc"))
	cur := b.Release()
	if len(cur) != 0 {
		t.Errorf("Release: got %q, want empty", cur)
	}
	if cap(cur) < cap(first) {
		t.Errorf("Release: got capacity %d, want at least %d", cap(cur), cap(first))
	}
	if got := b.Len(); got != 0 {
		t.Errorf("Len after release: got %d, want 0", got)
	}
}

package chunk

import (
	"bytes"
	"reflect"
	"testing"
)

func TestChunkLiteralExamples(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		size int
		want [][]byte
	}{
		{"3-byte chunks", []byte{1, 2, 3, 4, 5, 6}, 3, [][]byte{{1, 1, 2}, {1, 3, 4}, {0, 5, 6}}},
		{"5-byte chunks", []byte{1, 2, 3, 4, 5, 6}, 5, [][]byte{{1, 1, 2, 3, 4}, {0, 5, 6}}},
		{"single chunk", []byte{1, 2}, 99, [][]byte{{0, 1, 2}}},
		{"minimal size", []byte{1, 2, 3}, 2, [][]byte{{1, 1}, {1, 2}, {0, 3}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewChunker(tc.in, tc.size)
			if err != nil {
				t.Fatalf("NewChunker: %v", err)
			}
			got := c.Chunks()
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Chunks() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestChunkerRejectsInvalidArguments(t *testing.T) {
	if _, err := NewChunker(nil, 4); err != ErrInvalidArgument {
		t.Fatalf("empty input: got err=%v, want ErrInvalidArgument", err)
	}
	if _, err := NewChunker([]byte{1, 2}, 1); err != ErrInvalidArgument {
		t.Fatalf("C<2: got err=%v, want ErrInvalidArgument", err)
	}
}

func TestChunkerIsRestartable(t *testing.T) {
	c, err := NewChunker([]byte("hello world"), 4)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}
	first := c.Chunks()
	second := c.Chunks()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Chunks() is not deterministic across calls")
	}
}

func TestChunkerCountMatchesCeilDiv(t *testing.T) {
	buf := make([]byte, 97)
	c, err := NewChunker(buf, 10)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}
	want := (len(buf) + 8) / 9 // ceil(97/9)
	if got := c.Len(); got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	if got := len(c.Chunks()); got != want {
		t.Fatalf("len(Chunks()) = %d, want %d", got, want)
	}
}

func TestDechunkRoundTrip(t *testing.T) {
	buf := []byte("the quick brown fox jumps over the lazy dog")
	for size := 2; size < 20; size++ {
		c, err := NewChunker(buf, size)
		if err != nil {
			t.Fatalf("size=%d: NewChunker: %v", size, err)
		}
		d := NewDechunker()
		var done bool
		for _, ch := range c.Chunks() {
			done, err = d.Add(ch)
			if err != nil {
				t.Fatalf("size=%d: Add: %v", size, err)
			}
		}
		if !done {
			t.Fatalf("size=%d: dechunker never reported complete", size)
		}
		got, err := d.Merge()
		if err != nil {
			t.Fatalf("size=%d: Merge: %v", size, err)
		}
		if !bytes.Equal(got, buf) {
			t.Fatalf("size=%d: got %q, want %q", size, got, buf)
		}
	}
}

func TestDechunkerRejectsInvalidFlag(t *testing.T) {
	d := NewDechunker()
	if _, err := d.Add([]byte{0x02, 'x'}); err != ErrInvalidChunk {
		t.Fatalf("got err=%v, want ErrInvalidChunk", err)
	}
}

func TestDechunkerIgnoresEmptyChunks(t *testing.T) {
	d := NewDechunker()
	done, err := d.Add(nil)
	if err != nil {
		t.Fatalf("Add(nil): %v", err)
	}
	if done {
		t.Fatalf("empty chunk must not report complete")
	}
	if d.Complete() {
		t.Fatalf("empty chunk must not mark the dechunker complete")
	}
}

func TestDechunkerAfterTerminalFails(t *testing.T) {
	d := NewDechunker()
	if _, err := d.Add([]byte{0x00, 'a'}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := d.Add([]byte{0x00, 'b'}); err != ErrAlreadyComplete {
		t.Fatalf("got err=%v, want ErrAlreadyComplete", err)
	}
}

func TestDechunkerMergeBeforeCompleteFails(t *testing.T) {
	d := NewDechunker()
	if _, err := d.Add([]byte{0x01, 'a'}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := d.Merge(); err != ErrNotComplete {
		t.Fatalf("got err=%v, want ErrNotComplete", err)
	}
}

func TestDechunkerMergeIsIdempotent(t *testing.T) {
	d := NewDechunker()
	if _, err := d.Add([]byte{0x00, 'a', 'b'}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	first, err := d.Merge()
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	second, err := d.Merge()
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("Merge is not idempotent: %q != %q", first, second)
	}
}

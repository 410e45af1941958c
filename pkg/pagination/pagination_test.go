package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default limit, got %d", got)
	}
	if got := NormalizeLimit(500); got != MaxLimit {
		t.Fatalf("expected max limit, got %d", got)
	}
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("expected buffered limit 11, got %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Now().UTC().Truncate(time.Microsecond), ID: uuid.New()}
	out, err := ParseCursor(EncodeCursor(in))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if out == nil || !out.CreatedAt.Equal(in.CreatedAt) || out.ID != in.ID {
		t.Fatalf("cursor round trip mismatch: %+v vs %+v", in, out)
	}
}

func TestKeyCursorRoundTrip(t *testing.T) {
	in := KeyCursor{CreatedAt: time.Now().UTC().Truncate(time.Microsecond), ID: "G-LA-0001"}
	out, err := ParseKeyCursor(EncodeKeyCursor(in))
	if err != nil {
		t.Fatalf("parse key cursor: %v", err)
	}
	if out == nil || !out.CreatedAt.Equal(in.CreatedAt) || out.ID != in.ID {
		t.Fatalf("key cursor round trip mismatch: %+v vs %+v", in, out)
	}

	if cur, err := ParseKeyCursor(""); err != nil || cur != nil {
		t.Fatalf("empty cursor should parse to nil, got %+v err=%v", cur, err)
	}
	if _, err := ParseKeyCursor("!!!"); err == nil {
		t.Fatal("expected error for malformed cursor")
	}
}

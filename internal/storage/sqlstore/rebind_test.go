package sqlstore

import (
	"testing"
	"time"
)

func TestRebind(t *testing.T) {
	q := "UPDATE t SET a = ?, b = ? WHERE id = ?"
	if got := SQLite.rebind(q); got != q {
		t.Errorf("sqlite rebind = %q", got)
	}
	want := "UPDATE t SET a = $1, b = $2 WHERE id = $3"
	if got := Postgres.rebind(q); got != want {
		t.Errorf("postgres rebind = %q, want %q", got, want)
	}
}

func TestTimeColScan(t *testing.T) {
	want := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	for _, src := range []any{
		"2025-03-01T12:30:00Z",
		[]byte("2025-03-01T12:30:00.000Z"),
		"2025-03-01 12:30:00",
		want.In(time.FixedZone("CET", 3600)),
	} {
		var got time.Time
		if err := (timeCol{&got}).Scan(src); err != nil {
			t.Errorf("Scan(%v): %v", src, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("Scan(%v) = %v, want %v", src, got, want)
		}
	}
	var got time.Time
	if err := (timeCol{&got}).Scan(42); err == nil {
		t.Error("Scan(int) should fail")
	}
}

func TestSQLiteTimestampsSortAsText(t *testing.T) {
	older := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	newer := older.Add(500 * time.Millisecond)

	a, b := SQLite.ts(older).(string), SQLite.ts(newer).(string)
	if len(a) != len(b) || a >= b {
		t.Errorf("text order broken: %q vs %q", a, b)
	}

	var got time.Time
	if err := (timeCol{&got}).Scan(b); err != nil || !got.Equal(newer) {
		t.Errorf("round trip of %q = %v, %v", b, got, err)
	}
}

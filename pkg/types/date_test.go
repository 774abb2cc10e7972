package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateJSONRoundTrip(t *testing.T) {
	type payload struct {
		Purchased Date  `json:"purchased"`
		Returned  *Date `json:"returned"`
	}

	var got payload
	if err := json.Unmarshal([]byte(`{"purchased":"2024-03-15","returned":null}`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Purchased.String() != "2024-03-15" {
		t.Fatalf("unexpected date %q", got.Purchased)
	}
	if got.Returned != nil {
		t.Fatalf("expected nil returned date, got %v", got.Returned)
	}

	out, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"purchased":"2024-03-15","returned":null}` {
		t.Fatalf("unexpected json %s", out)
	}
}

func TestDateRejectsTimestamps(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2024-03-15T10:00:00Z"`), &d); err == nil {
		t.Fatal("expected timestamp to be rejected")
	}
	if _, err := ParseDate("15/03/2024"); err == nil {
		t.Fatal("expected non-ISO date to be rejected")
	}
}

func TestTodayUsesClockInUTC(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := func() time.Time { return time.Date(2024, 6, 1, 22, 30, 0, 0, loc) }
	if got := Today(now).String(); got != "2024-06-02" {
		t.Fatalf("expected UTC calendar date, got %q", got)
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan("2023-12-31 00:00:00+00:00"); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if d.String() != "2023-12-31" {
		t.Fatalf("unexpected scanned date %q", d)
	}
	if err := d.Scan(time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("scan time: %v", err)
	}
	if d.String() != "2022-01-02" {
		t.Fatalf("unexpected scanned date %q", d)
	}
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Fatalf("expected nil to reset date, err=%v", err)
	}

	v, err := MustParseDate("2021-07-04").Value()
	if err != nil || v != "2021-07-04" {
		t.Fatalf("unexpected value %v err=%v", v, err)
	}
}

func TestDateOrdering(t *testing.T) {
	a := MustParseDate("2024-01-01")
	b := MustParseDate("2024-01-02")
	if !a.Before(b) || !b.After(a) || a.Equal(b) {
		t.Fatal("unexpected ordering")
	}
}

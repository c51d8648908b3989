package extjson

import (
	"testing"
	"time"
)

func mustDecode(t *testing.T, raw string) Object {
	t.Helper()
	obj, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode(%q): %v", raw, err)
	}
	return obj
}

func TestIdentifierForms(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
		ok   bool
	}{
		{"bare string", "abc123", "abc123", true},
		{"empty string", "", "", false},
		{"oid wrapped", map[string]any{"$oid": "507f1f77bcf86cd799439011"}, "507f1f77bcf86cd799439011", true},
		{"oid empty", map[string]any{"$oid": ""}, "", false},
		{"oid missing", map[string]any{"other": "x"}, "", false},
		{"integer number", float64(42), "42", true},
		{"large number no exponent", float64(1690000000000), "1690000000000", true},
		{"bool rejected", true, "", false},
		{"nil rejected", nil, "", false},
	}
	for _, c := range cases {
		got, ok := Identifier(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("%s: Identifier = (%q, %v), want (%q, %v)", c.name, got, ok, c.want, c.ok)
		}
	}
}

func TestIDFromDecodedObject(t *testing.T) {
	obj := mustDecode(t, `{"_id": {"$oid": "deadbeef"}}`)
	id, ok := ID(obj, "_id")
	if !ok || id != "deadbeef" {
		t.Fatalf("ID = (%q, %v)", id, ok)
	}
	if _, ok := ID(mustDecode(t, `{}`), "_id"); ok {
		t.Fatalf("expected miss on absent key")
	}
}

func TestForeignKeyOrderAndSkip(t *testing.T) {
	// First key wins when present and non-empty
	obj := mustDecode(t, `{"instance": "a", "instanceId": "b"}`)
	if fk, _ := ForeignKey(obj, "instance", "instanceId", "instance_id"); fk != "a" {
		t.Fatalf("fk = %q, want a", fk)
	}

	// An empty earlier source yields to a later non-empty one
	obj = mustDecode(t, `{"instance": "", "instance_id": "c"}`)
	fk, ok := ForeignKey(obj, "instance", "instanceId", "instance_id")
	if !ok || fk != "c" {
		t.Fatalf("fk = (%q, %v), want (c, true)", fk, ok)
	}

	// Wrapped encodings are accepted at any position
	obj = mustDecode(t, `{"instanceId": {"$oid": "wrapped"}}`)
	if fk, _ := ForeignKey(obj, "instance", "instanceId"); fk != "wrapped" {
		t.Fatalf("fk = %q, want wrapped", fk)
	}

	if _, ok := ForeignKey(mustDecode(t, `{}`), "instance"); ok {
		t.Fatalf("expected miss on empty object")
	}
}

func TestTimestampEpochSecondsVsMillis(t *testing.T) {
	// Same instant in both units lands on the same UTC time
	sec := float64(1700000000)
	ms := float64(1700000000000)

	tsSec, ok := Timestamp(sec)
	if !ok {
		t.Fatalf("seconds decode failed")
	}
	tsMs, ok := Timestamp(ms)
	if !ok {
		t.Fatalf("millis decode failed")
	}
	if !tsSec.Equal(tsMs) {
		t.Fatalf("seconds %v != millis %v", tsSec, tsMs)
	}
	if tsSec.Location() != time.UTC {
		t.Fatalf("not UTC: %v", tsSec.Location())
	}
}

func TestTimestampWrappedDate(t *testing.T) {
	obj := mustDecode(t, `{"createdAt": {"$date": "2023-07-15T10:30:00Z"}}`)
	ts, ok := Timestamp(obj["createdAt"])
	if !ok {
		t.Fatalf("wrapped string decode failed")
	}
	want := time.Date(2023, 7, 15, 10, 30, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("ts = %v, want %v", ts, want)
	}

	obj = mustDecode(t, `{"createdAt": {"$date": 1689417000000}}`)
	ts, ok = Timestamp(obj["createdAt"])
	if !ok || !ts.Equal(time.UnixMilli(1689417000000).UTC()) {
		t.Fatalf("wrapped millis decode = (%v, %v)", ts, ok)
	}
}

func TestTimestampISOVariants(t *testing.T) {
	cases := []string{
		"2023-07-15T10:30:00Z",
		"2023-07-15T10:30:00.123456",
		"2023-07-15 10:30:00",
		"2023-07-15",
	}
	for _, in := range cases {
		if _, ok := Timestamp(in); !ok {
			t.Fatalf("ISO form %q did not decode", in)
		}
	}
	if _, ok := Timestamp("yesterday"); ok {
		t.Fatalf("garbage decoded")
	}
	if _, ok := Timestamp(map[string]any{"$date": true}); ok {
		t.Fatalf("wrapped bool decoded")
	}
}

func TestScalarRendering(t *testing.T) {
	obj := mustDecode(t, `{"type": "chat", "status": 3, "meta": {"x": 1}}`)
	if v := Scalar(obj, "type"); v != "chat" {
		t.Fatalf("type = %q", v)
	}
	if v := Scalar(obj, "status"); v != "3" {
		t.Fatalf("status = %q", v)
	}
	if v := Scalar(obj, "meta"); v != "" {
		t.Fatalf("structured value rendered: %q", v)
	}
	if v := Scalar(obj, "absent"); v != "" {
		t.Fatalf("absent value rendered: %q", v)
	}
}

func TestHelpersOnNilObject(t *testing.T) {
	if v := Str(nil, "x"); v != "" {
		t.Fatalf("Str(nil) = %q", v)
	}
	if Flag(nil, "x") {
		t.Fatalf("Flag(nil) = true")
	}
	if Sub(nil, "x") != nil {
		t.Fatalf("Sub(nil) != nil")
	}
	if _, ok := ID(nil, "x"); ok {
		t.Fatalf("ID(nil) ok")
	}
}

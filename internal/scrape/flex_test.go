package scrape

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFlexIntDecodesLooseCounters(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{`1234`, 1234},
		{`12.9`, 12},
		{`"1,234"`, 1234},
		{`"12.5K"`, 12500},
		{`"3M subscribers"`, 3000000},
		{`"1.2b"`, 1200000000},
		{`null`, 0},
		{`"n/a"`, 0},
		{`true`, 0},
		{`{"a":1}`, 0},
	}
	for _, tc := range cases {
		var v FlexInt
		if err := json.Unmarshal([]byte(tc.raw), &v); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		if v.Int64() != tc.want {
			t.Errorf("%s: got %d want %d", tc.raw, v, tc.want)
		}
	}
}

func TestFlexStringsAcceptsObjectsAndStrings(t *testing.T) {
	var v FlexStrings
	raw := `["https://a.example", {"url": "https://b.example", "title": "b"}, {"lynx_url": "https://c.example"}, 7, ""]`
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := FlexStrings{"https://a.example", "https://b.example", "https://c.example"}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("got %v want %v", v, want)
	}

	var single FlexStrings
	if err := json.Unmarshal([]byte(`"https://only.example"`), &single); err != nil {
		t.Fatalf("unmarshal single: %v", err)
	}
	if len(single) != 1 || single[0] != "https://only.example" {
		t.Fatalf("unexpected single: %v", single)
	}
}

func TestFlexBoolAndString(t *testing.T) {
	var payload struct {
		A FlexBool   `json:"a"`
		B FlexBool   `json:"b"`
		C FlexBool   `json:"c"`
		D FlexString `json:"d"`
		E FlexString `json:"e"`
	}
	if err := json.Unmarshal([]byte(`{"a": true, "b": "1", "c": 0, "d": 123456789, "e": "abc"}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !payload.A || !payload.B || payload.C {
		t.Fatalf("unexpected bools: %+v", payload)
	}
	if payload.D != "123456789" || payload.E != "abc" {
		t.Fatalf("unexpected strings: %+v", payload)
	}
}

func TestParseCountRejectsNonNumeric(t *testing.T) {
	if _, ok := ParseCount("subscribers"); ok {
		t.Fatal("expected parse failure")
	}
	if n, ok := ParseCount(" 42 "); !ok || n != 42 {
		t.Fatalf("got %d %v", n, ok)
	}
}

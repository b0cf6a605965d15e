package codec

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"google.golang.org/protobuf/types/known/wrapperspb"
)

type completion struct {
	Text  string   `json:"text" msgpack:"text" cbor:"text"`
	Stops []string `json:"stops" msgpack:"stops" cbor:"stops"`
}

func TestCodecsPreserveValue(t *testing.T) {
	in := completion{Text: "Hello 世界 🌍", Stops: []string{"\n", "###"}}
	codecs := map[string]Codec[completion]{
		"json":    JSON[completion]{},
		"sonic":   Sonic[completion]{},
		"cbor":    MustCBOR[completion](true),
		"msgpack": Msgpack[completion]{},
	}
	for name, c := range codecs {
		b, err := c.Encode(in)
		if err != nil {
			t.Fatalf("%s encode: %v", name, err)
		}
		out, err := c.Decode(b)
		if err != nil {
			t.Fatalf("%s decode: %v", name, err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Fatalf("%s: got %+v want %+v", name, out, in)
		}
	}
}

func TestSonicReadsEncodingJSON(t *testing.T) {
	in := completion{Text: "x", Stops: []string{"y"}}
	b, err := JSON[completion]{}.Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Sonic[completion]{}.Decode(b)
	if err != nil || !reflect.DeepEqual(in, out) {
		t.Fatalf("sonic decode of json bytes: %+v err=%v", out, err)
	}
}

func TestDeterministicCBORIsStable(t *testing.T) {
	c := MustCBOR[map[string]int](true)
	m := map[string]int{"b": 2, "a": 1, "c": 3}
	first, err := c.Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, _ := c.Encode(m)
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic CBOR produced different bytes")
		}
	}
}

func TestProtobuf(t *testing.T) {
	c := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	b, err := c.Encode(wrapperspb.String("cached"))
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Decode(b)
	if err != nil || out.GetValue() != "cached" {
		t.Fatalf("got %q err=%v", out.GetValue(), err)
	}

	var zero Protobuf[*wrapperspb.StringValue]
	if _, err := zero.Decode(b); err == nil {
		t.Fatalf("expected error without constructor")
	}
}

func TestLimitRejectsOversized(t *testing.T) {
	c := Limit[string]{Inner: String{}, MaxDecode: 4}
	if _, err := c.Decode([]byte("12345")); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("expected size error, got %v", err)
	}
	if v, err := c.Decode([]byte("1234")); err != nil || v != "1234" {
		t.Fatalf("at limit: v=%q err=%v", v, err)
	}

	unlimited := Limit[string]{Inner: String{}}
	if _, err := unlimited.Decode(bytes.Repeat([]byte("x"), 1<<16)); err != nil {
		t.Fatalf("MaxDecode=0 must not limit: %v", err)
	}
}

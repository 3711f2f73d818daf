package gojson_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	eng "github.com/reoring/smartjson/internal/engine"
	"github.com/reoring/smartjson/source/gojson"
)

func TestNextToken_Kinds(t *testing.T) {
	src := gojson.NewBytes([]byte(`{"a":[1,"x",true,null,{"k":2.5}],"b":"y"}`))
	want := []eng.Kind{
		eng.KindBeginObject,
		eng.KindKey, eng.KindBeginArray,
		eng.KindNumber, eng.KindString, eng.KindBool, eng.KindNull,
		eng.KindBeginObject, eng.KindKey, eng.KindNumber, eng.KindEndObject,
		eng.KindEndArray,
		eng.KindKey, eng.KindString,
		eng.KindEndObject,
	}
	var got []eng.Kind
	var strs []string
	for {
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("token %d: %v", len(got), err)
		}
		got = append(got, tok.Kind)
		if tok.Kind == eng.KindKey || tok.Kind == eng.KindString {
			strs = append(strs, tok.String)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d kind = %v, want %v", i, got[i], want[i])
		}
	}
	if strings.Join(strs, ",") != "a,x,k,b,y" {
		t.Fatalf("strings = %v", strs)
	}
}

func TestDecodeDocument_ThroughDriver(t *testing.T) {
	v, err := eng.DecodeDocument(gojson.NewReader(strings.NewReader(`{"n":10,"f":0.25}`)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := v.(map[string]any)
	if m["n"] != int64(10) || m["f"] != 0.25 {
		t.Fatalf("numbers = %#v", m)
	}
}

func TestLocation_NeverExceedsInput(t *testing.T) {
	in := `[1,2,3]`
	src := gojson.NewBytes([]byte(in))
	for {
		if _, err := src.NextToken(); err != nil {
			break
		}
		if loc := src.Location(); loc > int64(len(in)) {
			t.Fatalf("location %d beyond input length %d", loc, len(in))
		}
	}
}

package smartjson_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/smartjson"
)

type line struct {
	SKU   string  `json:"sku"`
	Price float64 `json:"price"`
}

type order struct {
	ID     int       `json:"id"`
	Placed time.Time `json:"placed"`
	Due    smartjson.Date
	Note   *string  `json:"note"`
	Tags   []string `json:"tags"`
	Lines  []line   `json:"lines"`
}

func sampleOrder() order {
	return order{
		ID:     7,
		Placed: time.Date(2024, 5, 6, 7, 8, 9, 250000000, time.UTC),
		Due:    smartjson.Date{Year: 2024, Month: time.June, Day: 1},
		Tags:   []string{"a", "b"},
		Lines:  []line{{SKU: "x", Price: 9.5}, {SKU: "y", Price: 2}},
	}
}

func TestRoundTrip_Order(t *testing.T) {
	data, err := smartjson.Serialize(sampleOrder())
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	want := `{"Due":"2024-06-01","id":7,"lines":[{"price":9.5,"sku":"x"},{"price":2,"sku":"y"}],"note":"","placed":"2024-05-06 07:08:09.250000","tags":["a","b"]}`
	if string(data) != want {
		t.Fatalf("got  %s\nwant %s", data, want)
	}

	n, err := smartjson.Deserialize(data)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if id, _ := n.Int("id"); id != 7 {
		t.Fatalf("id = %d", id)
	}
	if placed, ok := n.Time("placed"); !ok || !placed.Equal(sampleOrder().Placed) {
		t.Fatalf("placed = %v, %v", placed, ok)
	}
	if due, ok := n.Date("Due"); !ok || due != sampleOrder().Due {
		t.Fatalf("Due = %v, %v", due, ok)
	}
	if note, _ := n.Str("note"); note != "" {
		t.Fatalf("note = %q", note)
	}
	if price, ok := n.Lookup("lines[1].price"); !ok || price != int64(2) {
		t.Fatalf("lines[1].price = %#v, %v", price, ok)
	}
}

func TestSerializeToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	path, err := smartjson.SerializeToFile(sampleOrder(), dir, "")
	if err != nil {
		t.Fatalf("serialize to file: %v", err)
	}
	if filepath.Base(path) != "order.json" {
		t.Fatalf("default file name = %s", filepath.Base(path))
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("{\n  \"Due\"")) {
		t.Fatalf("file is not indented:\n%s", raw)
	}

	n, err := smartjson.DeserializeFile(path)
	if err != nil {
		t.Fatalf("deserialize file: %v", err)
	}
	if tags, _ := n.List("tags"); !cmp.Equal(tags, []any{"a", "b"}) {
		t.Fatalf("tags = %#v", tags)
	}

	path, err = smartjson.SerializeToFile(map[string]any{"a": 1}, dir, "")
	if err != nil {
		t.Fatalf("map to file: %v", err)
	}
	if filepath.Base(path) != "smart.json" {
		t.Fatalf("unnamed type file name = %s", filepath.Base(path))
	}

	path, err = smartjson.SerializeToFile(map[string]any{"a": 1}, dir, "custom.json")
	if err != nil || filepath.Base(path) != "custom.json" {
		t.Fatalf("custom name: %s, %v", path, err)
	}
}

func TestSerializeToFile_Errors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := smartjson.SerializeToFile(map[string]any{}, filepath.Join(blocker, "sub"), "")
	if !errors.Is(err, smartjson.ErrSerialization) || !strings.Contains(err.Error(), "Could not create directory") {
		t.Fatalf("expected directory error, got %v", err)
	}

	self := &ref{Name: "loop"}
	self.Ref = self
	_, err = smartjson.SerializeToFile(self, dir, "loop.json")
	if !errors.Is(err, smartjson.ErrCircularDependency) {
		t.Fatalf("expected circular dependency, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "loop.json")); !os.IsNotExist(statErr) {
		t.Fatalf("no file should be written on failure")
	}
}

func TestDeserialize_Errors(t *testing.T) {
	cases := []struct {
		name   string
		in     []byte
		prefix string
	}{
		{"malformed", []byte(`{"a":`), "Invalid JSON format in input"},
		{"truncated array", []byte(`[1, 2`), "Invalid JSON format in input"},
		{"empty", []byte("  \n"), "Invalid JSON format in input"},
		{"trailing data", []byte(`{"a":1} {"b":2}`), "Invalid JSON format in input"},
		{"invalid utf-8", []byte{'"', 0xff, '"'}, "Input bytes could not be decoded using UTF-8"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := smartjson.Deserialize(tc.in)
			if !errors.Is(err, smartjson.ErrDeserialization) {
				t.Fatalf("expected deserialization error, got %v", err)
			}
			if !strings.HasPrefix(err.Error(), tc.prefix) {
				t.Fatalf("message = %q, want prefix %q", err.Error(), tc.prefix)
			}
		})
	}

	_, err := smartjson.Deserialize([]byte(`[1,2]`))
	if !errors.Is(err, smartjson.ErrDeserialization) || !strings.Contains(err.Error(), "Expected a mapping structure") {
		t.Fatalf("array root: %v", err)
	}
}

func TestDeserializeFile_Errors(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.json")
	_, err := smartjson.DeserializeFile(missing)
	if !errors.Is(err, smartjson.ErrDeserialization) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: %v", err)
	}
	if !strings.HasPrefix(err.Error(), "JSON file not found: "+missing) {
		t.Fatalf("message = %q", err.Error())
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"a" 1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = smartjson.DeserializeFile(bad)
	if !errors.Is(err, smartjson.ErrDeserialization) || !strings.Contains(err.Error(), "Invalid JSON format in file '"+bad+"'") {
		t.Fatalf("malformed file: %v", err)
	}

	latin := filepath.Join(dir, "latin.json")
	if err := os.WriteFile(latin, []byte{'{', '"', 0xe9, '"', ':', '1', '}'}, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = smartjson.DeserializeFile(latin)
	if !errors.Is(err, smartjson.ErrDeserialization) || !strings.Contains(err.Error(), "could not be decoded using UTF-8") {
		t.Fatalf("non UTF-8 file: %v", err)
	}
}

func TestDeserialize_DuplicateKeys(t *testing.T) {
	in := `{"outer":{"a":1,"a":2}}`

	n, err := smartjson.DeserializeString(in)
	if err != nil {
		t.Fatalf("ignore: %v", err)
	}
	if v, _ := n.Lookup("outer.a"); v != int64(2) {
		t.Fatalf("last occurrence should win, got %#v", v)
	}

	var logs bytes.Buffer
	warn := smartjson.New(smartjson.Options{
		Logger:     slog.New(slog.NewTextHandler(&logs, nil)),
		Strictness: smartjson.Strictness{OnDuplicateKey: smartjson.Warn},
	})
	if _, err := warn.DeserializeString(in); err != nil {
		t.Fatalf("warn: %v", err)
	}
	if out := logs.String(); !strings.Contains(out, "duplicate JSON key") || !strings.Contains(out, "path=outer.a") {
		t.Fatalf("expected a warning record, got %q", out)
	}

	reject := smartjson.New(smartjson.Options{Strictness: smartjson.Strictness{OnDuplicateKey: smartjson.Reject}})
	_, err = reject.DeserializeString(in)
	if !errors.Is(err, smartjson.ErrDeserialization) {
		t.Fatalf("reject: expected deserialization error, got %v", err)
	}
	if !strings.Contains(err.Error(), "key 'a' duplicated at 'outer.a'") {
		t.Fatalf("reject message: %v", err)
	}
}

func TestDeserialize_Limits(t *testing.T) {
	shallow := smartjson.New(smartjson.Options{MaxDepth: 2})
	if _, err := shallow.DeserializeString(`{"a":{"b":1}}`); err != nil {
		t.Fatalf("depth 2: %v", err)
	}
	_, err := shallow.DeserializeString(`{"a":{"b":{"c":1}}}`)
	if !errors.Is(err, smartjson.ErrDeserialization) || !strings.Contains(err.Error(), "max depth exceeded at 'a.b'") {
		t.Fatalf("depth 3: %v", err)
	}

	small := smartjson.New(smartjson.Options{MaxBytes: 8})
	if _, err := small.DeserializeString(`{"a":1}`); err != nil {
		t.Fatalf("7 bytes: %v", err)
	}
	if _, err := small.DeserializeString(`{"abc":12345}`); !errors.Is(err, smartjson.ErrDeserialization) {
		t.Fatalf("13 bytes: %v", err)
	}
	_, err = small.DeserializeReader(strings.NewReader(`{"abc":12345}`))
	if !errors.Is(err, smartjson.ErrDeserialization) || !strings.Contains(err.Error(), "max bytes exceeded") {
		t.Fatalf("reader over limit: %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestDeserializeReader(t *testing.T) {
	n, err := smartjson.DeserializeReader(strings.NewReader(`{"k":[1,2.5,"s",true,null]}`))
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	got, _ := n.List("k")
	if diff := cmp.Diff([]any{int64(1), 2.5, "s", true, nil}, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	_, err = smartjson.DeserializeReader(failingReader{})
	if !errors.Is(err, smartjson.ErrDeserialization) || !strings.Contains(err.Error(), "I/O error reading input") {
		t.Fatalf("failing reader: %v", err)
	}
	_, err = smartjson.DeserializeReader(io.LimitReader(strings.NewReader(`{"a":1}`), 4))
	if !errors.Is(err, smartjson.ErrDeserialization) {
		t.Fatalf("short reader: %v", err)
	}
}

func TestCodec_DebugLogging(t *testing.T) {
	var logs bytes.Buffer
	c := smartjson.New(smartjson.Options{
		Logger: slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	if _, err := c.Serialize(map[string]any{"a": 1}); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !strings.Contains(logs.String(), "msg=serialize") {
		t.Fatalf("expected debug record, got %q", logs.String())
	}
	if c.Options().Logger == nil {
		t.Fatalf("options should expose the configured logger")
	}
}

func TestError_Taxonomy(t *testing.T) {
	cause := errors.New("root cause")
	e := &smartjson.Error{Code: smartjson.CodeSerialization, Message: "outer", Cause: cause}
	if !errors.Is(e, smartjson.ErrSerialization) || errors.Is(e, smartjson.ErrDeserialization) {
		t.Fatalf("code matching is wrong")
	}
	if !errors.Is(e, cause) {
		t.Fatalf("cause not reachable")
	}
	if got := e.Error(); got != "outer (caused by: *errors.errorString - root cause)" {
		t.Fatalf("Error() = %q", got)
	}

	circ := &smartjson.Error{Code: smartjson.CodeCircularDependency}
	if !errors.Is(circ, smartjson.ErrSerialization) || !errors.Is(circ, smartjson.ErrCircularDependency) {
		t.Fatalf("circular dependency must match both sentinels")
	}
	if errors.Is(smartjson.ErrSerialization, smartjson.ErrCircularDependency) {
		t.Fatalf("serialization must not match circular dependency")
	}

	if _, ok := smartjson.AsError(cause); ok {
		t.Fatalf("plain error is not a *Error")
	}
	if got, ok := smartjson.AsError(wrapf(e)); !ok || got != e {
		t.Fatalf("AsError through wrapping failed")
	}
}

func wrapf(err error) error { return &wrapped{err} }

type wrapped struct{ err error }

func (w *wrapped) Error() string { return "wrapped: " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

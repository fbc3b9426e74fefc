package jsonplist

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pbxfmt/pbx/pbxval"
)

func TestParseOrderPreserved(t *testing.T) {
	t.Parallel()
	v, err := Parse([]byte(`{"zeta": "1", "alpha": "2", "mid": {"b": "1", "a": "2"}}`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	root := v.(*pbxval.Mapping)
	if got, want := root.Keys(), []string{"zeta", "alpha", "mid"}; !cmp.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	mid, ok := root.Mapping("mid")
	if !ok {
		t.Fatalf(`Mapping("mid") not found`)
	}
	if got, want := mid.Keys(), []string{"b", "a"}; !cmp.Equal(got, want) {
		t.Errorf("nested Keys() = %v, want %v", got, want)
	}
}

func TestParseDataSentinel(t *testing.T) {
	t.Parallel()
	v, err := Parse([]byte(`{"blob": {"$data": "DEADBEEF"}}`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	root := v.(*pbxval.Mapping)
	blobVal, ok := root.Get("blob")
	if !ok {
		t.Fatalf(`Get("blob") not found`)
	}
	blob, ok := blobVal.(pbxval.Data)
	if !ok {
		t.Fatalf("blob = %T, want pbxval.Data", blobVal)
	}
	if diff := cmp.Diff([]byte{0xDE, 0xAD, 0xBE, 0xEF}, []byte(blob)); diff != "" {
		t.Errorf("blob mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejection(t *testing.T) {
	t.Parallel()
	tests := []string{
		`{"a": }`,
		`{"a": "b",}`,
		`[1, 2`,
		`not json at all`,
	}
	for _, src := range tests {
		if _, err := Parse([]byte(src)); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", src)
		}
	}
}

func TestUnparseRoundTrip(t *testing.T) {
	t.Parallel()
	m := pbxval.NewMapping()
	m.Set("name", pbxval.String(`a "quoted" value`))
	m.Set("items", pbxval.Sequence{pbxval.String("x"), pbxval.String("y")})
	m.Set("blob", pbxval.Data{0xDE, 0xAD})
	m.Set("nested", pbxval.NewMapping())

	out, err := Unparse(m, false)
	if err != nil {
		t.Fatalf("Unparse error: %v", err)
	}
	got, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse of unparsed output failed: %v\n%s", err, out)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

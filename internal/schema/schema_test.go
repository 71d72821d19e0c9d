package schema

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPropertiesKeepOrder(t *testing.T) {
	const doc = `{"type":"object","properties":{"zeta":{"type":"string"},"alpha":{"type":"integer"},"mid":{"type":"boolean"}}}`

	var s Schema
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, s.Properties.Names()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}

	out, err := json.Marshal(&s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != doc {
		t.Errorf("got  %s\nwant %s", out, doc)
	}
}

func TestPropertiesDuplicateMember(t *testing.T) {
	var p Properties
	if err := json.Unmarshal([]byte(`{"a":{"type":"string"},"b":{"type":"string"},"a":{"type":"integer"}}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, p.Names()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	a, _ := p.Get("a")
	if a.Type != TypeInteger {
		t.Errorf("last value should win, got %q", a.Type)
	}
}

func TestPropertiesSetReplaceKeepsPosition(t *testing.T) {
	p := NewProperties()
	p.Set("a", &Schema{Type: TypeString})
	p.Set("b", &Schema{Type: TypeString})
	p.Set("a", &Schema{Type: TypeBoolean})

	var names []string
	for name, s := range p.All() {
		names = append(names, name+":"+s.Type)
	}
	if diff := cmp.Diff([]string{"a:boolean", "b:string"}, names); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestEmptyAndAbsentProperties(t *testing.T) {
	out, err := json.Marshal(&Schema{Type: TypeObject, Properties: NewProperties()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"type":"object","properties":{}}` {
		t.Errorf("empty properties: got %s", out)
	}

	out, err = json.Marshal(&Schema{Type: TypeObject})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"type":"object"}` {
		t.Errorf("absent properties: got %s", out)
	}

	var s Schema
	if err := json.Unmarshal([]byte(`{"type":"object"}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Properties != nil {
		t.Errorf("absent properties should decode as nil")
	}
	if s.Properties.Len() != 0 || s.Properties.Names() != nil {
		t.Errorf("nil properties should behave as empty")
	}
}

func TestIsRequired(t *testing.T) {
	s := &Schema{Type: TypeObject, Required: []string{"a", "c"}}
	if !s.IsRequired("a") || s.IsRequired("b") {
		t.Errorf("IsRequired mismatch")
	}
}

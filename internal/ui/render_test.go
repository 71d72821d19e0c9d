package ui

import (
	"bytes"
	"testing"

	"github.com/nibzard/fieldtree/internal/field"
)

func TestRenderTree(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderTree(&buf, sampleTree()); err != nil {
		t.Fatalf("RenderTree: %v", err)
	}

	want := "(root): object closed\n" +
		"  name: string required\n" +
		"  tags: array<object>\n" +
		"    label: string\n"
	if got := buf.String(); got != want {
		t.Errorf("RenderTree =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatNode(t *testing.T) {
	tests := []struct {
		name   string
		node   *field.Node
		isRoot bool
		want   string
	}{
		{name: "root ignores required", node: &field.Node{Kind: field.Object, IsRequired: true}, isRoot: true, want: "(root): object"},
		{name: "unnamed", node: &field.Node{Kind: field.Float}, want: "(unnamed): number"},
		{name: "open object", node: &field.Node{PropertyKey: "m", Kind: field.Object, AdditionalProperties: field.Bool(true)}, want: "m: object open"},
		{name: "scalar flag hidden", node: &field.Node{PropertyKey: "s", Kind: field.String, AdditionalProperties: field.Bool(false)}, want: "s: string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatNode(tt.node, tt.isRoot); got != tt.want {
				t.Errorf("FormatNode() = %q, want %q", got, tt.want)
			}
		})
	}
}

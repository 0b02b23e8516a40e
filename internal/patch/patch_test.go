package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidPatch(t *testing.T) {
	doc := []byte(`
name: demo
blocks:
  - id: a
    type: number.const
    params:
      value: 10
  - type: number.sum
connections:
  - from: a.value
    to: add.a
`)
	p, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, "demo", p.Name)
	require.Len(t, p.Blocks, 2)
	assert.Equal(t, "a", p.Blocks[0].ID)
	assert.Empty(t, p.Blocks[1].ID, "ids are optional")
	require.Len(t, p.Connections, 1)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	doc := []byte(`
name: demo
blocks:
  - type: number.const
wires:
  - from: a.value
    to: b.in
`)
	_, err := Parse(doc)
	require.Error(t, err)

	var pe *PatchError
	assert.ErrorAs(t, err, &pe)
}

func TestParseShapeValidation(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "block without type",
			doc: `
blocks:
  - id: a
`,
			wantErr: "type is required",
		},
		{
			name: "definition without id",
			doc: `
definitions:
  - code: "outputs: out: 1"
blocks:
  - type: number.const
`,
			wantErr: "id is required",
		},
		{
			name: "definition without code",
			doc: `
definitions:
  - id: custom.x
blocks:
  - type: number.const
`,
			wantErr: "code is required",
		},
		{
			name: "endpoint without dot",
			doc: `
blocks:
  - type: number.const
connections:
  - from: nodot
    to: b.in
`,
			wantErr: `must be "instance.port"`,
		},
		{
			name: "endpoint with empty port",
			doc: `
blocks:
  - type: number.const
connections:
  - from: a.
    to: b.in
`,
			wantErr: `must be "instance.port"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSplitEndpoint(t *testing.T) {
	inst, port, err := splitEndpoint("osc.out")
	require.NoError(t, err)
	assert.Equal(t, "osc", inst)
	assert.Equal(t, "out", port)

	// The first dot splits; the port may itself contain dots.
	inst, port, err = splitEndpoint("amp.gain.db")
	require.NoError(t, err)
	assert.Equal(t, "amp", inst)
	assert.Equal(t, "gain.db", port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read patch")
}

func TestPatchErrorMessage(t *testing.T) {
	withField := &PatchError{Field: "blocks[0].type", Message: "type is required"}
	assert.Contains(t, withField.Error(), "blocks[0].type")

	bare := &PatchError{Message: "yaml: bad"}
	assert.Contains(t, bare.Error(), "yaml: bad")
}

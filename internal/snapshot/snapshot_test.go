package snapshot

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archatlas/internal/domain"
)

func testGraph() domain.Graph {
	return domain.Graph{
		Components: []domain.Component{
			{ID: "web1", Type: domain.ComponentTypeWeb, Name: "Web Server", Zone: "DMZ",
				Metadata: domain.Metadata{
					Exposed: true,
					Extra:   map[string]any{"diagramX": float64(120), "color": "blue"},
				}},
			{ID: "db1", Type: domain.ComponentTypeData, Name: "Database", Zone: "Data"},
		},
		Connections: []domain.Connection{
			{ID: "c1", From: "web1", To: "db1", Protocol: "PostgreSQL", Encryption: "TLS"},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	original := New(testGraph(), nil, nil)

	data, err := original.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, Version, decoded.Version)
	assert.Equal(t, original.Nodes, decoded.Nodes)
	assert.Equal(t, original.Edges, decoded.Edges)

	// Unknown metadata keys survive the trip.
	assert.Equal(t, "blue", decoded.Nodes[0].Metadata.Extra["color"])
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arch.json")

	require.NoError(t, New(testGraph(), nil, nil).Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Graph().Components, 2)
	assert.Len(t, loaded.Graph().Connections, 1)
}

func TestDecode_VersionMismatch(t *testing.T) {
	s := New(testGraph(), nil, nil)
	s.Version = "0.9"
	data, err := json.Marshal(s)
	require.NoError(t, err)

	_, err = Decode(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
}

func TestDecode_RejectsEmptyNodes(t *testing.T) {
	s := &Snapshot{Version: Version}
	data, err := json.Marshal(s)
	require.NoError(t, err)

	_, err = Decode(data)
	require.Error(t, err)
}

func TestDecode_RejectsMalformedJSON(t *testing.T) {
	_, err := Decode([]byte("{broken"))
	require.Error(t, err)
}

func TestDecode_SizeLimit(t *testing.T) {
	_, err := Decode(make([]byte, MaxSize+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

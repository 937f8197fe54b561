package descriptor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "account.xml")
	require.NoError(t, os.WriteFile(path, []byte(accountDocument), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "uid", d.Identifier)
	assert.True(t, d.Sealed())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.xml"))
	assert.Error(t, err)
}

func TestLoadRejectsIncompleteDescriptor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xml")
	// well-formed XML, but the root misses its required attributes
	require.NoError(t, os.WriteFile(path, []byte(`<descriptor identifier="" uniqueName="x"/>`), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

type mapSource map[string]string

func (m mapSource) Fetch(_ context.Context, name string) (io.ReadCloser, error) {
	doc, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("no document %s", name)
	}
	return io.NopCloser(bytes.NewReader([]byte(doc))), nil
}

func TestLoadStore(t *testing.T) {
	source := mapSource{"account/reconciliation.xml": accountDocument}

	d, err := LoadStore(context.Background(), source, "account/reconciliation.xml")
	require.NoError(t, err)
	assert.Equal(t, "uid", d.Identifier)

	_, err = LoadStore(context.Background(), source, "absent.xml")
	assert.Error(t, err)
}

func TestParseNonUTF8Charset(t *testing.T) {
	doc := `<?xml version="1.0" encoding="ISO-8859-1"?>` + "\n" +
		`<descriptor identifier="uid" uniqueName="name"/>`
	d, err := Parse(bytes.NewReader([]byte(doc)))
	require.NoError(t, err)
	assert.Equal(t, "uid", d.Identifier)
}

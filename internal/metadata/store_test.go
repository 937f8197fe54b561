package metadata

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirStoreRoundTrip(t *testing.T) {
	store := NewDirStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "account/provisioning.xml", []byte("<descriptor/>")))
	require.NoError(t, store.Put(ctx, "account/reconciliation.xml", []byte("<descriptor/>")))

	rc, err := store.Fetch(ctx, "account/provisioning.xml")
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "<descriptor/>", string(content))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"account/provisioning.xml", "account/reconciliation.xml"}, names)
}

func TestDirStoreFetchMissing(t *testing.T) {
	store := NewDirStore(t.TempDir())
	_, err := store.Fetch(context.Background(), "nope.xml")
	assert.Error(t, err)
}

func TestDirStoreRejectsEscapingNames(t *testing.T) {
	store := NewDirStore(t.TempDir())
	ctx := context.Background()
	_, err := store.Fetch(ctx, "../outside.xml")
	assert.Error(t, err)
	err = store.Put(ctx, "/etc/passwd", []byte("x"))
	assert.Error(t, err)
}

// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gutenbergsync/internal/catalog"
)

const sampleRDF = `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
  xmlns:dcterms="http://purl.org/dc/terms/"
  xmlns:pgterms="http://www.gutenberg.org/2009/pgterms/">
  <pgterms:ebook rdf:about="ebooks/%d">
    <dcterms:title>Book %d</dcterms:title>
    <dcterms:creator>
      <pgterms:agent><pgterms:name>Author %d</pgterms:name></pgterms:agent>
    </dcterms:creator>
  </pgterms:ebook>
</rdf:RDF>`

// writeFakeRsyncThatPopulates writes a fake rsync binary that, instead of
// actually transferring anything, materializes N RDF files directly into
// its destination argument -- letting orchestrator tests exercise the
// metadata-parse-upsert pipeline without a real subprocess dependency.
func writeFakeRsyncThatPopulates(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-rsync.sh")

	body := `#!/bin/sh
dest=""
for a in "$@"; do dest="$a"; done
mkdir -p "$dest"
` + populateLoop(n) + `
echo "receiving file list"
echo "done"
exit 0
`
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	return script
}

func populateLoop(n int) string {
	out := ""
	for i := 1; i <= n; i++ {
		out += "cat > \"$dest/" + itoa(i) + ".rdf\" <<'EOF'\n" + rdfFor(i) + "\nEOF\n"
	}
	return out
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := ""
	for i > 0 {
		digits = string(rune('0'+i%10)) + digits
		i /= 10
	}
	return digits
}

func rdfFor(i int) string {
	return sprintfRDF(i)
}

func sprintfRDF(i int) string {
	return replaceAllInts(sampleRDF, i)
}

func replaceAllInts(tmpl string, i int) string {
	out := ""
	for j := 0; j < len(tmpl); j++ {
		if tmpl[j] == '%' && j+1 < len(tmpl) && tmpl[j+1] == 'd' {
			out += itoa(i)
			j++
		} else {
			out += string(tmpl[j])
		}
	}
	return out
}

func TestSyncMetadata_PopulatesCatalog(t *testing.T) {
	fake := writeFakeRsyncThatPopulates(t, 3)
	targetDir := t.TempDir()

	store, err := catalog.Open(filepath.Join(targetDir, "gutenberg.db"))
	require.NoError(t, err)
	defer store.Close()

	orch := New(store)
	opts := Options{
		TargetDirectory: targetDir,
		RsyncPath:       fake,
	}

	var events []Progress
	res := orch.SyncMetadata(context.Background(), opts, func(p Progress) { events = append(events, p) })

	require.True(t, res.Success, res.Err)
	assert.Equal(t, 3, res.RecordsUpserted)
	assert.Equal(t, 0, res.FilesSkipped)
	assert.NotEmpty(t, events)

	stats, err := store.ComputeStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalBooks)
}

func TestSync_MetadataOnlySkipsContent(t *testing.T) {
	fake := writeFakeRsyncThatPopulates(t, 1)
	targetDir := t.TempDir()

	store, err := catalog.Open(filepath.Join(targetDir, "gutenberg.db"))
	require.NoError(t, err)
	defer store.Close()

	orch := New(store)
	opts := Options{TargetDirectory: targetDir, RsyncPath: fake, MetadataOnly: true}

	res := orch.Sync(context.Background(), opts, nil)
	require.True(t, res.Success)
	assert.Equal(t, "metadata-only sync complete", res.Message)
	assert.Equal(t, 0, res.ContentFilesTransferred)
}

func TestSyncMetadata_DriverFailureSurfacesError(t *testing.T) {
	dir := t.TempDir()
	fake := filepath.Join(dir, "fail-rsync.sh")
	require.NoError(t, os.WriteFile(fake, []byte("#!/bin/sh\nexit 1\n"), 0o755))

	targetDir := t.TempDir()
	store, err := catalog.Open(filepath.Join(targetDir, "gutenberg.db"))
	require.NoError(t, err)
	defer store.Close()

	orch := New(store)
	opts := Options{TargetDirectory: targetDir, RsyncPath: fake}

	res := orch.SyncMetadata(context.Background(), opts, nil)
	assert.False(t, res.Success)
	assert.False(t, res.Cancelled)
	require.Error(t, res.Err)
}

func TestSyncMetadata_CancelledBeforeStart(t *testing.T) {
	fake := writeFakeRsyncThatPopulates(t, 1)
	targetDir := t.TempDir()
	store, err := catalog.Open(filepath.Join(targetDir, "gutenberg.db"))
	require.NoError(t, err)
	defer store.Close()

	orch := New(store)
	opts := Options{TargetDirectory: targetDir, RsyncPath: fake}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := orch.SyncMetadata(ctx, opts, nil)
	assert.True(t, res.Cancelled)
	assert.Equal(t, msgCancelled, res.Message)
}

func TestPresetIncludes(t *testing.T) {
	assert.Equal(t, []string{"*.txt", "*.zip"}, presetIncludes("text-only"))
	assert.Equal(t, []string{"*.txt", "*.zip"}, presetIncludes(""))
	assert.Nil(t, presetIncludes("full"))
	assert.True(t, usesSecondaryEndpoint("text-epub"))
	assert.False(t, usesSecondaryEndpoint("text-only"))
}

func TestOptions_MetadataTimeoutDefault(t *testing.T) {
	opts := Options{}
	assert.Equal(t, defaultMetadataTimeout, opts.metadataTimeout())

	opts.Timeout = 5 * time.Second
	assert.Equal(t, 5*time.Second, opts.metadataTimeout())
}

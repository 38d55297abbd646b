// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readExport returns the files of an exported zip archive in archive order
func readExport(t *testing.T, data []byte) ([]FlatFile, []*zip.File) {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var files []FlatFile
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		files = append(files, FlatFile{Path: f.Name, Data: content})
	}
	return files, zr.File
}

func TestExport(t *testing.T) {
	files := []FlatFile{
		{Path: "a.txt", Data: []byte("hi")},
		{Path: "sub/b.json", Data: []byte(`{"x":1}`)},
		{Path: "sub/deeper/empty.bin", Data: []byte{}},
		{Path: "c.bin", Data: bytes.Repeat([]byte{0xAB}, 4096)},
	}
	modified := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	var progress []string
	var buf bytes.Buffer
	err := Export(context.Background(), &buf, files,
		WithCompressionLevel(flate.BestSpeed),
		WithModified(modified),
		WithProgress(func(f FlatFile) { progress = append(progress, f.Path) }),
	)
	require.NoError(t, err)

	got, zf := readExport(t, buf.Bytes())
	require.Len(t, got, len(files))
	for i := range files {
		assert.Equal(t, files[i].Path, got[i].Path)
		assert.True(t, bytes.Equal(files[i].Data, got[i].Data), "content of %s", files[i].Path)
		assert.Equal(t, zip.Deflate, zf[i].Method)
		assert.True(t, modified.Equal(zf[i].Modified.UTC()), "modified of %s", files[i].Path)
	}
	assert.Equal(t, []string{"a.txt", "sub/b.json", "sub/deeper/empty.bin", "c.bin"}, progress)
}

func TestExportExpandedTree(t *testing.T) {
	root, err := Expand(context.Background(), "root.lz4", exampleArchive(t), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(context.Background(), &buf, Flatten(root)))

	got, _ := readExport(t, buf.Bytes())
	assert.Equal(t, Flatten(root), got)
}

func TestExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(context.Background(), &buf, nil))

	got, _ := readExport(t, buf.Bytes())
	assert.Empty(t, got)
}

func TestExportInvalidPaths(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "empty", path: ""},
		{name: "folder", path: "dir/"},
		{name: "current directory", path: "."},
		{name: "current directory element", path: "./a.txt"},
		{name: "parent directory", path: "../evil.txt"},
		{name: "nested parent directory", path: "sub/../../evil.txt"},
		{name: "absolute", path: "/etc/cron.d/evil"},
		{name: "empty element", path: "sub//a.txt"},
		{name: "backslash", path: `..\evil.txt`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			files := []FlatFile{{Path: "a.txt"}, {Path: tc.path}}

			var buf bytes.Buffer
			err := Export(context.Background(), &buf, files)

			var ee *ExportError
			require.True(t, errors.As(err, &ee), "expected export error, got %v", err)
			assert.Equal(t, tc.path, ee.Path)
			assert.Zero(t, buf.Len(), "nothing is written before paths are validated")
		})
	}
}

func TestExportDuplicatePaths(t *testing.T) {
	files := []FlatFile{
		{Path: "a.txt", Data: []byte("first a")},
		{Path: "b.txt", Data: []byte("b")},
		{Path: "a.txt", Data: []byte("second a")},
	}

	var written []string
	var buf bytes.Buffer
	err := Export(context.Background(), &buf, files, WithProgress(func(f FlatFile) { written = append(written, f.Path) }))
	require.NoError(t, err)

	got, _ := readExport(t, buf.Bytes())
	assert.Equal(t, []FlatFile{
		{Path: "a.txt", Data: []byte("second a")},
		{Path: "b.txt", Data: []byte("b")},
	}, got)
	assert.Equal(t, []string{"a.txt", "b.txt"}, written)
}

func TestExportCollidingTree(t *testing.T) {
	// sub/b.json exists as plain file and inside sub.lz4, a.txt is appended twice
	input := lz4Bundle(t,
		RawEntry{Name: "sub/b.json", Data: []byte(`{"plain":true}`)},
		RawEntry{Name: "sub.lz4", Data: lz4Bundle(t, RawEntry{Name: "b.json", Data: []byte(`{"nested":true}`)})},
		RawEntry{Name: "a.txt", Data: []byte("old")},
		RawEntry{Name: "a.txt", Data: []byte("new")},
	)
	root, err := Expand(context.Background(), "input.lz4", input, nil)
	require.NoError(t, err)

	files := Flatten(root)
	require.Len(t, files, 4)

	var buf bytes.Buffer
	require.NoError(t, Export(context.Background(), &buf, files))

	got, _ := readExport(t, buf.Bytes())
	assert.Equal(t, []FlatFile{
		{Path: "sub/b.json", Data: []byte(`{"nested":true}`)},
		{Path: "a.txt", Data: []byte("new")},
	}, got)
}

func TestExportUnsafeMemberNames(t *testing.T) {
	sub := lz4Bundle(t, RawEntry{Name: "../../evil.txt", Data: []byte("up")})
	input := lz4Bundle(t,
		RawEntry{Name: "/etc/cron.d/job", Data: []byte("abs")},
		RawEntry{Name: "sub.lz4", Data: sub},
		RawEntry{Name: `dir\win.txt`, Data: []byte("win")},
		RawEntry{Name: "./a/./b.txt", Data: []byte("dots")},
	)
	root, err := Expand(context.Background(), "input.lz4", input, nil)
	require.NoError(t, err)

	files := Flatten(root)
	assert.Equal(t, []FlatFile{
		{Path: "etc/cron.d/job", Data: []byte("abs")},
		{Path: "sub/evil.txt", Data: []byte("up")},
		{Path: "dir/win.txt", Data: []byte("win")},
		{Path: "a/b.txt", Data: []byte("dots")},
	}, files)

	var buf bytes.Buffer
	require.NoError(t, Export(context.Background(), &buf, files))
	got, _ := readExport(t, buf.Bytes())
	assert.Equal(t, files, got)
}

func TestExportMaxSize(t *testing.T) {
	data := make([]byte, 64*1024)
	_, err := rand.Read(data)
	require.NoError(t, err)
	files := []FlatFile{{Path: "random.bin", Data: data}}

	var buf bytes.Buffer
	err = Export(context.Background(), &buf, files, WithMaxExportSize(1024))
	var ee *ExportError
	require.True(t, errors.As(err, &ee), "expected export error, got %v", err)
	assert.ErrorIs(t, err, ErrMaxExportSizeExceeded)
	assert.LessOrEqual(t, buf.Len(), 1024)

	// retry without a limit
	buf.Reset()
	require.NoError(t, Export(context.Background(), &buf, files, WithMaxExportSize(-1)))
	got, _ := readExport(t, buf.Bytes())
	assert.Equal(t, files, got)
}

func TestExportCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Export(ctx, io.Discard, []FlatFile{{Path: "a.txt", Data: []byte("a")}})
	var ee *ExportError
	require.True(t, errors.As(err, &ee))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportName(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{
			name:  "utc",
			input: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
			want:  "decompressed_files_2024-05-01T12-30-00-000Z.zip",
		},
		{
			name:  "milliseconds",
			input: time.Date(2023, 12, 31, 23, 59, 59, 987654321, time.UTC),
			want:  "decompressed_files_2023-12-31T23-59-59-987Z.zip",
		},
		{
			name:  "local time is converted",
			input: time.Date(2024, 1, 1, 1, 0, 0, 0, time.FixedZone("CET", 3600)),
			want:  "decompressed_files_2024-01-01T00-00-00-000Z.zip",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExportName(tc.input))
		})
	}
}

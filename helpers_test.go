// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// compressFunc is a function that compresses a byte slice
type compressFunc func(*testing.T, []byte) []byte

// compressWith writes data through the writer returned by newWriter.
func compressWith(t *testing.T, data []byte, newWriter func(io.Writer) (io.WriteCloser, error)) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := newWriter(&buf)
	if err != nil {
		t.Fatalf("error creating writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("error writing data: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("error closing writer: %v", err)
	}
	return buf.Bytes()
}

func compressLZ4(t *testing.T, data []byte) []byte {
	return compressWith(t, data, func(w io.Writer) (io.WriteCloser, error) { return lz4.NewWriter(w), nil })
}

func compressGzip(t *testing.T, data []byte) []byte {
	return compressWith(t, data, func(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil })
}

func compressZlib(t *testing.T, data []byte) []byte {
	return compressWith(t, data, func(w io.Writer) (io.WriteCloser, error) { return zlib.NewWriter(w), nil })
}

func compressZstd(t *testing.T, data []byte) []byte {
	return compressWith(t, data, func(w io.Writer) (io.WriteCloser, error) { return zstd.NewWriter(w) })
}

func compressSnappy(t *testing.T, data []byte) []byte {
	return compressWith(t, data, func(w io.Writer) (io.WriteCloser, error) { return snappy.NewBufferedWriter(w), nil })
}

func compressXz(t *testing.T, data []byte) []byte {
	return compressWith(t, data, func(w io.Writer) (io.WriteCloser, error) { return xz.NewWriter(w) })
}

func compressBzip2(t *testing.T, data []byte) []byte {
	return compressWith(t, data, func(w io.Writer) (io.WriteCloser, error) {
		return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
	})
}

func compressBrotli(t *testing.T, data []byte) []byte {
	return compressWith(t, data, func(w io.Writer) (io.WriteCloser, error) { return brotli.NewWriter(w), nil })
}

// tarContent is a struct to store the content of a tar file
type tarContent struct {
	content    []byte
	linktarget string
	mode       os.FileMode
	name       string
	fileType   byte
}

// packTar creates a tar file with the given content
func packTar(t *testing.T, content []tarContent) []byte {
	t.Helper()

	// create tar writer
	writeBuffer := bytes.NewBuffer([]byte{})
	tw := tar.NewWriter(writeBuffer)

	// write content
	for _, c := range content {
		if c.fileType == 0 {
			c.fileType = tar.TypeReg
		}
		if c.mode == 0 {
			c.mode = 0640
		}

		// create header
		hdr := &tar.Header{
			Name:     c.name,
			Mode:     int64(c.mode),
			Size:     int64(len(c.content)),
			Linkname: c.linktarget,
			Typeflag: c.fileType,
		}
		if c.fileType != tar.TypeReg {
			hdr.Size = 0
		}

		// write header
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("error writing tar header: %v", err)
		}

		// write data
		if c.fileType == tar.TypeReg {
			if _, err := tw.Write(c.content); err != nil {
				t.Fatalf("error writing tar data: %v", err)
			}
		}
	}

	// close tar writer
	if err := tw.Close(); err != nil {
		t.Fatalf("error closing tar writer: %v", err)
	}

	return writeBuffer.Bytes()
}

// packZip creates a zip file with the given files, directories end with a slash
func packZip(t *testing.T, files []RawEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			t.Fatalf("error creating zip entry: %v", err)
		}
		if _, err := w.Write(f.Data); err != nil {
			t.Fatalf("error writing zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("error closing zip writer: %v", err)
	}
	return buf.Bytes()
}

// lz4Bundle packs files into a tar stream inside an lz4 frame, the multi-file lz4 layout
func lz4Bundle(t *testing.T, files ...RawEntry) []byte {
	t.Helper()

	content := make([]tarContent, 0, len(files))
	for _, f := range files {
		content = append(content, tarContent{name: f.Name, content: f.Data})
	}
	return compressLZ4(t, packTar(t, content))
}

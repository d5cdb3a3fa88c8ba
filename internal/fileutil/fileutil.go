// Package fileutil provides compression-aware document I/O. Lexicon
// files are often shipped compressed; ReadDocument and WriteDocument
// handle .xz and .gz transparently based on the file extension.
package fileutil

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/openlexica/liftcurator/core/errors"
)

// ReadDocument reads a file, decompressing it when the path ends in
// .xz or .gz. "-" reads from stdin (never decompressed).
func ReadDocument(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.NewIO("read", "stdin", err)
		}
		return data, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer file.Close()

	var reader io.Reader = file
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xz":
		xzReader, err := xz.NewReader(file)
		if err != nil {
			return nil, errors.NewIO("decompress", path, err)
		}
		reader = xzReader
	case ".gz":
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			return nil, errors.NewIO("decompress", path, err)
		}
		defer gzReader.Close()
		reader = gzReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return data, nil
}

// WriteDocument writes a file, compressing when the path ends in .xz
// or .gz. "-" writes to stdout (never compressed). The write goes
// through a temp file in the same directory so an interrupted write
// cannot truncate an existing document.
func WriteDocument(path string, data []byte) error {
	if path == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			return errors.NewIO("write", "stdout", err)
		}
		return nil
	}

	encoded, err := encodeFor(path, data)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.NewIO("create", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewIO("write", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.NewIO("rename", path, err)
	}
	return nil
}

func encodeFor(path string, data []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xz":
		var buf bytes.Buffer
		writer, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, errors.NewIO("compress", path, err)
		}
		if _, err := writer.Write(data); err != nil {
			return nil, errors.NewIO("compress", path, err)
		}
		if err := writer.Close(); err != nil {
			return nil, errors.NewIO("compress", path, err)
		}
		return buf.Bytes(), nil
	case ".gz":
		var buf bytes.Buffer
		writer, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, errors.NewIO("compress", path, err)
		}
		if _, err := writer.Write(data); err != nil {
			return nil, errors.NewIO("compress", path, err)
		}
		if err := writer.Close(); err != nil {
			return nil, errors.NewIO("compress", path, err)
		}
		return buf.Bytes(), nil
	default:
		return data, nil
	}
}

// CopyFile copies src to dst, creating parent directories as needed.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.NewIO("open", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.NewIO("mkdir", filepath.Dir(dst), err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return errors.NewIO("create", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.NewIO("copy", dst, err)
	}
	return out.Sync()
}

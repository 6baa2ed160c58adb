package main

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"

	"media-tidy/shootdate"
)

func init() {
	// Register maker note handlers
	exif.RegisterParsers(mknote.All...)
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// maxPNGTextChunk caps the size of a metadata chunk read into memory
const maxPNGTextChunk = 16 << 20

// ReadEmbeddedMetadata reads the original capture time and free-text fields
// embedded in an image. It returns shootdate.ErrNoMetadata when the file
// has none, and any other error when the file could not be read.
func ReadEmbeddedMetadata(path string) (*shootdate.Metadata, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !isImageFile(path) {
		return nil, shootdate.ErrNoMetadata
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var meta *shootdate.Metadata
	if ext == ".png" {
		meta, err = readPNGMetadata(bufio.NewReader(f))
	} else {
		meta, err = readEXIFMetadata(f)
	}
	if err != nil {
		return nil, err
	}
	if meta.DateTimeOriginal == "" && len(meta.Text) == 0 {
		return nil, shootdate.ErrNoMetadata
	}
	return meta, nil
}

// readEXIFMetadata decodes EXIF from a JPEG or TIFF stream
func readEXIFMetadata(r io.Reader) (*shootdate.Metadata, error) {
	meta := &shootdate.Metadata{}

	x, err := exif.Decode(r)
	if err != nil && exif.IsCriticalError(err) {
		// Many photos might not have EXIF data, which is okay
		return meta, nil
	}

	if tag, err := x.Get(exif.DateTimeOriginal); err == nil {
		if val, err := tag.StringVal(); err == nil {
			val = strings.TrimSpace(strings.TrimRight(val, "\x00"))
			// Zeroed and future values are dropped so the file name decides
			if shootdate.IsValid(val, shootdate.ExifLayout) {
				meta.DateTimeOriginal = val
			}
		}
	}

	return meta, nil
}

// readPNGMetadata walks the chunks of a PNG stream, decoding an eXIf chunk
// and collecting tEXt, zTXt and iTXt key/value pairs
func readPNGMetadata(r io.Reader) (*shootdate.Metadata, error) {
	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, fmt.Errorf("failed to read PNG signature: %w", err)
	}
	if !bytes.Equal(sig, pngSignature) {
		return nil, errors.New("not a PNG file")
	}

	meta := &shootdate.Metadata{Text: make(map[string]string)}
	header := make([]byte, 8)
	for {
		if _, err := io.ReadFull(r, header); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read PNG chunk header: %w", err)
		}
		length := binary.BigEndian.Uint32(header[:4])
		chunkType := string(header[4:])

		switch chunkType {
		case "tEXt", "zTXt", "iTXt", "eXIf":
			if length > maxPNGTextChunk {
				return nil, fmt.Errorf("PNG %s chunk too large: %d bytes", chunkType, length)
			}
			data := make([]byte, length)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, fmt.Errorf("failed to read PNG %s chunk: %w", chunkType, err)
			}
			if chunkType == "eXIf" {
				exifMeta, err := readEXIFMetadata(bytes.NewReader(data))
				if err == nil && exifMeta.DateTimeOriginal != "" {
					meta.DateTimeOriginal = exifMeta.DateTimeOriginal
				}
			} else if key, val, ok := parsePNGText(chunkType, data); ok {
				meta.Text[key] = val
			}
		default:
			if _, err := io.CopyN(io.Discard, r, int64(length)); err != nil {
				return nil, fmt.Errorf("failed to skip PNG %s chunk: %w", chunkType, err)
			}
		}

		// CRC
		if _, err := io.CopyN(io.Discard, r, 4); err != nil {
			return nil, fmt.Errorf("failed to read PNG chunk CRC: %w", err)
		}
		if chunkType == "IEND" {
			break
		}
	}

	return meta, nil
}

// parsePNGText decodes the keyword and text of a textual PNG chunk
func parsePNGText(chunkType string, data []byte) (string, string, bool) {
	key, rest, ok := bytes.Cut(data, []byte{0})
	if !ok || len(key) == 0 {
		return "", "", false
	}

	switch chunkType {
	case "tEXt":
		return latin1(key), latin1(rest), true

	case "zTXt":
		// compression method byte, then zlib data
		if len(rest) < 1 {
			return "", "", false
		}
		text, err := inflate(rest[1:])
		if err != nil {
			return "", "", false
		}
		return latin1(key), latin1(text), true

	case "iTXt":
		// compression flag, compression method, language tag, translated keyword, text
		if len(rest) < 2 {
			return "", "", false
		}
		compressed := rest[0] == 1
		_, rest, ok = bytes.Cut(rest[2:], []byte{0})
		if !ok {
			return "", "", false
		}
		_, text, ok := bytes.Cut(rest, []byte{0})
		if !ok {
			return "", "", false
		}
		if compressed {
			var err error
			if text, err = inflate(text); err != nil {
				return "", "", false
			}
		}
		return latin1(key), string(text), true
	}

	return "", "", false
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(io.LimitReader(zr, maxPNGTextChunk))
}

// latin1 converts ISO 8859-1 bytes, the encoding of tEXt and zTXt, to UTF-8
func latin1(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

// hasValidDateTimeOriginal reports whether a photo already carries a usable
// original capture time
func hasValidDateTimeOriginal(path string) bool {
	meta, err := ReadEmbeddedMetadata(path)
	if err != nil {
		return false
	}
	return shootdate.IsValid(meta.DateTimeOriginal, shootdate.ExifLayout)
}

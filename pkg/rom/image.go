// Package rom loads Denso ROM images and reads the small fixed-offset
// records around the checksum table: reflash counter, edit stamp and
// identification strings.
package rom

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tosih/denso-rom-tool/pkg/bytereader"
	"github.com/tosih/denso-rom-tool/pkg/models"
)

// Image is a ROM file loaded into memory. Data must not be modified while
// a scan is running.
type Image struct {
	Path string
	Data []byte
	Type models.RomType
}

// Open reads the whole file at path.
func Open(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("failed to read ROM %s: file is empty", path)
	}
	return FromBytes(path, data), nil
}

// FromBytes wraps an in-memory image.
func FromBytes(path string, data []byte) *Image {
	return &Image{Path: path, Data: data, Type: DetectType(len(data))}
}

// DetectType guesses the ROM type from the image size.
func DetectType(size int) models.RomType {
	return models.DetectRomType(size)
}

// Size returns the image size in bytes.
func (img *Image) Size() int {
	return len(img.Data)
}

// Name returns the file name without directory.
func (img *Image) Name() string {
	return filepath.Base(img.Path)
}

// ReadASCII returns n bytes at pos as a string, or "" if out of range.
func (img *Image) ReadASCII(pos, n int) string {
	s, err := bytereader.NewAt(img.Data, pos).ReadASCII(n)
	if err != nil {
		return ""
	}
	return s
}

// SidecarPath returns path with its extension replaced by ext.
func SidecarPath(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

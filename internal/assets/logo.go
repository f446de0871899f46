package assets

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"janus/internal/errors"
)

// Image is a display asset held in memory for embedding into responses.
type Image struct {
	Path        string
	ContentType string
	Data        []byte
}

// LoadImage reads the asset at path. A missing or unreadable file yields an
// error wrapping errors.ErrAssetMissing.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrAssetMissing, path, err)
	}
	return &Image{
		Path:        path,
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

// DataURI renders the image as a data: URI.
func (i *Image) DataURI() string {
	return "data:" + i.ContentType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

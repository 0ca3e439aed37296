// Package artifact produces and keeps the QR verification images that get
// embedded into generated surat tugas documents.
package artifact

import (
	"context"
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

// ProviderFetchSize is the raster size requested from the QR provider. The
// image is scaled down to 75x75 when embedded into the document.
const ProviderFetchSize = 250

const inlineSize = 200

// QrFetcher is implemented by client/qrimg.
type QrFetcher interface {
	Fetch(ctx context.Context, text string, sizePx int) ([]byte, error)
}

type Generator struct {
	Provider QrFetcher
	Store    Store
}

// GenerateAndStore fetches a QR raster encoding url, keeps it under the
// record id, and returns the serving path usable within the same generation
// session.
func (g *Generator) GenerateAndStore(ctx context.Context, url, documentID string) (string, error) {
	img, err := g.Provider.Fetch(ctx, url, ProviderFetchSize)
	if err != nil {
		return "", err
	}
	if err := g.Store.Put(documentID, img); err != nil {
		return "", err
	}
	return "/v1/surat-tugas/qr-image/" + documentID, nil
}

func (g *Generator) Retrieve(documentID string) ([]byte, error) {
	return g.Store.Get(documentID)
}

// GenerateInline renders the QR locally and returns it as a base64 data URL,
// for when the provider or the store is unavailable. High error correction
// so the print survives degradation; black on white.
func (g *Generator) GenerateInline(url string) (string, error) {
	png, err := qrcode.Encode(url, qrcode.Highest, inlineSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

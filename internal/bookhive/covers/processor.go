package covers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Processor validates uploaded cover images, stores them, and derives the
// hashes the catalog record keeps: a BlurHash placeholder and a SHA256 ETag.
type Processor struct {
	storage *Storage
	logger  *slog.Logger
}

// NewProcessor creates a Processor over the given storage.
func NewProcessor(storage *Storage, logger *slog.Logger) *Processor {
	return &Processor{
		storage: storage,
		logger:  logger,
	}
}

// Result describes a stored cover.
type Result struct {
	BlurHash string // 4x3-component placeholder hash
	ETag     string // hex SHA256 of the stored bytes
	Width    int
	Height   int
	Size     int64
}

// Process decodes an uploaded cover, stores it as {id}.jpg, and returns the
// derived hashes. Data that does not decode as JPEG, PNG, GIF, or WebP is
// rejected before anything is written.
func (p *Processor) Process(bookID int64, data []byte) (*Result, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode cover: %w", err)
	}

	blur, err := computeBlurHash(img)
	if err != nil {
		return nil, err
	}

	if err := p.storage.Save(bookID, data); err != nil {
		return nil, fmt.Errorf("save cover: %w", err)
	}

	hash, err := p.storage.Hash(bookID)
	if err != nil {
		return nil, fmt.Errorf("hash cover: %w", err)
	}

	bounds := img.Bounds()
	result := &Result{
		BlurHash: blur,
		ETag:     hash,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Size:     int64(len(data)),
	}

	p.logger.Info("stored cover",
		"book_id", bookID,
		"format", format,
		"size", result.Size,
		"width", result.Width,
		"height", result.Height,
		"hash", hash[:8]+"...",
	)

	return result, nil
}

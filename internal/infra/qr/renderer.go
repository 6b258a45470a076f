package qr

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const DefaultSize = 256

type Renderer struct {
	size int
}

func NewRenderer(size int) *Renderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Renderer{size: size}
}

func (r *Renderer) PNG(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, r.size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}

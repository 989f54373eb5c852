package rembg

import (
	"context"
	"image"
)

type Remover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

// DefaultRemover is used by RemoveWhiteBackground.
var DefaultRemover Remover = NewWhiteRemover()

package ui

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"fyne.io/fyne/v2"

	"github.com/AEBus/ffxiv-venues-dalamud/internal/engine"
)

// imageResource wraps downloaded banner bytes as a Fyne resource. Fyne
// resources are plain memory, so Close only severs the reference.
type imageResource struct {
	res *fyne.StaticResource
}

func (r *imageResource) Close() error {
	r.res = nil
	return nil
}

// Resource returns the displayable form, or nil after Close.
func (r *imageResource) Resource() fyne.Resource {
	if r == nil || r.res == nil {
		return nil
	}
	return r.res
}

// DecodeImage validates raw banner bytes and wraps them for display. It is
// the decode capability handed to the banner cache.
func DecodeImage(data []byte, label string) (engine.ImageHandle, error) {
	// Reject payloads the renderer could not draw, so bad data becomes a
	// terminal cache failure instead of a broken image widget.
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return &imageResource{res: fyne.NewStaticResource(label, data)}, nil
}

package onnx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
)

// preprocess decodes the image and lays it out as a 1xCxHxW float tensor.
// Resizing is bilinear; grayscale uses ITU-R 601 luma.
func preprocess(raw []byte, b *Bundle) ([]float32, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUndecodableImage)
	}

	channels := b.Channels()
	plane := b.Width * b.Height
	out := make([]float32, channels*plane)

	sx := float64(bounds.Dx()) / float64(b.Width)
	sy := float64(bounds.Dy()) / float64(b.Height)

	for y := 0; y < b.Height; y++ {
		fy := (float64(y)+0.5)*sy - 0.5
		for x := 0; x < b.Width; x++ {
			fx := (float64(x)+0.5)*sx - 0.5
			r, g, bl := sampleBilinear(img, bounds, fx, fy)

			i := y*b.Width + x
			if channels == 1 {
				out[i] = float32(0.299*r+0.587*g+0.114*bl) * b.Scale
				continue
			}
			out[i] = float32(r) * b.Scale
			out[plane+i] = float32(g) * b.Scale
			out[2*plane+i] = float32(bl) * b.Scale
		}
	}

	return out, nil
}

// sampleBilinear returns 8-bit RGB at a fractional position
func sampleBilinear(img image.Image, bounds image.Rectangle, fx, fy float64) (float64, float64, float64) {
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	wx := fx - float64(x0)
	wy := fy - float64(y0)

	var r, g, b float64
	for _, p := range [4]struct {
		dx, dy int
		w      float64
	}{
		{0, 0, (1 - wx) * (1 - wy)},
		{1, 0, wx * (1 - wy)},
		{0, 1, (1 - wx) * wy},
		{1, 1, wx * wy},
	} {
		if p.w == 0 {
			continue
		}
		px := clampInt(bounds.Min.X+x0+p.dx, bounds.Min.X, bounds.Max.X-1)
		py := clampInt(bounds.Min.Y+y0+p.dy, bounds.Min.Y, bounds.Max.Y-1)
		cr, cg, cb, _ := img.At(px, py).RGBA()
		r += float64(cr>>8) * p.w
		g += float64(cg>>8) * p.w
		b += float64(cb>>8) * p.w
	}
	return r, g, b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// softmax returns percentages that sum to 100
func softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}

	maxLogit := float64(logits[0])
	for _, l := range logits[1:] {
		if float64(l) > maxLogit {
			maxLogit = float64(l)
		}
	}

	out := make([]float64, len(logits))
	sum := 0.0
	for i, l := range logits {
		out[i] = math.Exp(float64(l) - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] = out[i] / sum * 100
	}
	return out
}

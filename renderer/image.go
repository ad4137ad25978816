package renderer

import "image"

// FlipRows converts tightly packed RGBA rows as GL reads them, bottom row
// first, into an image with the top row first.
func FlipRows(pixels []uint8, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	stride := width * 4
	if len(pixels) < stride*height {
		return img
	}
	for y := 0; y < height; y++ {
		src := pixels[(height-1-y)*stride : (height-y)*stride]
		copy(img.Pix[y*img.Stride:y*img.Stride+stride], src)
	}
	return img
}

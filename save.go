package main

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/stewi1014/fractal4d/logger"
	"github.com/stewi1014/fractal4d/renderer"
)

// save writes the current contents of the render target to name as a PNG.
// A partially written file is removed.
func save(r *renderer.Renderer, name string) (err error) {
	img, err := r.ReadImage()
	if err != nil {
		return err
	}

	file, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(file.Name())
		}
	}()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encoding %v: %w", name, err)
	}

	logger.Logger().Info("image saved",
		"file", file.Name(),
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy(),
	)
	return nil
}

// screenshotName picks a file name in the working directory for a quick save.
func screenshotName(now time.Time) string {
	return filepath.Join(".", "fractal4d-"+now.Format("20060102-150405")+".png")
}

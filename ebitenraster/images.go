package ebitenraster

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// Loader decodes the image named by src. It runs off the game goroutine.
type Loader func(src string) (image.Image, error)

// FileLoader decodes PNG and JPEG files from disk.
func FileLoader(src string) (image.Image, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src, err)
	}
	return img, nil
}

type imageEntry struct {
	decoded image.Image
	image   *ebiten.Image
	err     error
	done    bool
}

// ImageCache loads images in the background. The game loop polls it every
// frame; Get never blocks, it reports ok == false until the image is ready.
type ImageCache struct {
	load Loader

	mu      sync.Mutex
	entries map[string]*imageEntry
}

// NewImageCache returns a cache that loads through load. A nil load uses
// FileLoader.
func NewImageCache(load Loader) *ImageCache {
	if load == nil {
		load = FileLoader
	}
	return &ImageCache{load: load, entries: map[string]*imageEntry{}}
}

// Get returns the image for src, starting a background load on first use.
func (c *ImageCache) Get(src string) (*ebiten.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[src]
	if !ok {
		e = &imageEntry{}
		c.entries[src] = e
		go c.fetch(src, e)
		return nil, false
	}
	return e.image, e.image != nil
}

func (c *ImageCache) fetch(src string, e *imageEntry) {
	img, err := c.load(src)
	c.mu.Lock()
	defer c.mu.Unlock()
	e.decoded, e.err, e.done = img, err, true
}

// Poll uploads every decoded image to the GPU. Call it from the game loop.
func (c *ImageCache) Poll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.done && e.image == nil && e.decoded != nil {
			e.image = ebiten.NewImageFromImage(e.decoded)
			e.decoded = nil
		}
	}
}

// Err returns the load error for src, if any.
func (c *ImageCache) Err(src string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[src]; ok {
		return e.err
	}
	return nil
}

// Pending returns the number of images still loading.
func (c *ImageCache) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if !e.done {
			n++
		}
	}
	return n
}

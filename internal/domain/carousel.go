package domain

// Carousel steps through a product's images with wraparound.
type Carousel struct {
	Images []string
	Index  int
}

func NewCarousel(images []string, index int) Carousel {
	c := Carousel{Images: images}
	if n := len(images); n > 0 {
		c.Index = ((index % n) + n) % n
	}
	return c
}

func (c Carousel) Current() string {
	if len(c.Images) == 0 {
		return PlaceholderImage
	}
	return c.Images[c.Index]
}

func (c Carousel) Next() int {
	if len(c.Images) == 0 {
		return 0
	}
	return (c.Index + 1) % len(c.Images)
}

func (c Carousel) Prev() int {
	if len(c.Images) == 0 {
		return 0
	}
	return (c.Index - 1 + len(c.Images)) % len(c.Images)
}

// Position is the 1-based index for display.
func (c Carousel) Position() int { return c.Index + 1 }

//go:build ignore

package main

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
)

func main() {
	const size = 22
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	center := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) - center + 0.5
			dy := float64(y) - center + 0.5
			dist := math.Sqrt(dx*dx + dy*dy)

			if dist < 3 {
				// Inner teal core
				img.Set(x, y, color.RGBA{40, 200, 180, 255})
			} else if dist >= 5 && dist < 6.5 {
				// First wave ring
				img.Set(x, y, color.RGBA{30, 150, 140, 255})
			} else if dist >= 8 && dist < 9.5 {
				// Second wave ring
				img.Set(x, y, color.RGBA{20, 100, 95, 255})
			}
			// else transparent
		}
	}

	f, _ := os.Create("tray.png")
	defer f.Close()
	png.Encode(f, img)
}

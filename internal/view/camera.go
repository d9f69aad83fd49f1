// Package view maps between window pixels and world coordinates.
package view

import "github.com/golang/geo/r2"

// Camera shows the axis-aligned world rectangle of the given Size centered at
// Center. Pixel y grows downwards, world y upwards.
type Camera struct {
	Center r2.Point
	Size   r2.Point
}

func NewCamera(center, size r2.Point) Camera {
	return Camera{Center: center, Size: size}
}

// PixelToWorld converts a pixel position inside a window of the given size to
// world coordinates.
func (c Camera) PixelToWorld(pixel, window r2.Point) r2.Point {
	ndc := r2.Point{
		X: 2*pixel.X/window.X - 1,
		Y: 1 - 2*pixel.Y/window.Y,
	}
	return r2.Point{
		X: c.Center.X + ndc.X*c.Size.X/2,
		Y: c.Center.Y + ndc.Y*c.Size.Y/2,
	}
}

// WorldToPixel is the inverse of PixelToWorld.
func (c Camera) WorldToPixel(world, window r2.Point) r2.Point {
	ndc := r2.Point{
		X: 2 * (world.X - c.Center.X) / c.Size.X,
		Y: 2 * (world.Y - c.Center.Y) / c.Size.Y,
	}
	return r2.Point{
		X: (ndc.X + 1) * window.X / 2,
		Y: (1 - ndc.Y) * window.Y / 2,
	}
}

// Contains reports whether p lies inside the visible rectangle.
func (c Camera) Contains(p r2.Point) bool {
	return p.X >= c.Center.X-c.Size.X/2 && p.X <= c.Center.X+c.Size.X/2 &&
		p.Y >= c.Center.Y-c.Size.Y/2 && p.Y <= c.Center.Y+c.Size.Y/2
}

// PixelsPerUnit is the horizontal scale of the mapping.
func (c Camera) PixelsPerUnit(window r2.Point) float64 {
	return window.X / c.Size.X
}

package vision

import (
	"image"
	"image/color"
)

var white = color.Gray{Y: 255}

func grayLevel(v uint8) color.Gray { return color.Gray{Y: v} }

// Dilate grows mask foreground within a (2r+1)-square neighborhood, repeated
// iterations times.
func Dilate(mask *Mask, radius, iterations int) *Mask {
	cur := mask
	for i := 0; i < iterations; i++ {
		cur = dilateOnce(cur, radius)
	}
	return cur
}

// Erode shrinks mask foreground within a (2r+1)-square neighborhood, repeated
// iterations times.
func Erode(mask *Mask, radius, iterations int) *Mask {
	cur := mask
	for i := 0; i < iterations; i++ {
		cur = erodeOnce(cur, radius)
	}
	return cur
}

// Close bridges small gaps: dilate then erode.
func Close(mask *Mask, radius, iterations int) *Mask {
	return Erode(Dilate(mask, radius, iterations), radius, iterations)
}

// Open removes speckle noise: erode then dilate.
func Open(mask *Mask, radius, iterations int) *Mask {
	return Dilate(Erode(mask, radius, iterations), radius, iterations)
}

func dilateOnce(mask *Mask, radius int) *Mask {
	if radius <= 0 {
		return mask
	}
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(bounds)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if anyForeground(mask, bounds, x, y, radius) {
				out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, white)
			}
		}
	}
	return out
}

func erodeOnce(mask *Mask, radius int) *Mask {
	if radius <= 0 {
		return mask
	}
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(bounds)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if allForeground(mask, bounds, x, y, radius) {
				out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, white)
			}
		}
	}
	return out
}

func anyForeground(mask *Mask, bounds image.Rectangle, x, y, radius int) bool {
	w, h := bounds.Dx(), bounds.Dy()
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x2, y2 := x+dx, y+dy
			if x2 < 0 || y2 < 0 || x2 >= w || y2 >= h {
				continue
			}
			if mask.GrayAt(bounds.Min.X+x2, bounds.Min.Y+y2).Y != 0 {
				return true
			}
		}
	}
	return false
}

func allForeground(mask *Mask, bounds image.Rectangle, x, y, radius int) bool {
	w, h := bounds.Dx(), bounds.Dy()
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x2, y2 := x+dx, y+dy
			if x2 < 0 || y2 < 0 || x2 >= w || y2 >= h {
				// Pixels beyond the border count as background.
				return false
			}
			if mask.GrayAt(bounds.Min.X+x2, bounds.Min.Y+y2).Y == 0 {
				return false
			}
		}
	}
	return true
}

package preprocess

import "image"

// claheTiles is the grid the equalizer works on; 8x8 matches the tile size
// the region crops were tuned against.
const claheTiles = 8

// CLAHE applies contrast-limited adaptive histogram equalization. Each tile
// of an 8x8 grid gets its own clipped equalization mapping, and every pixel
// blends the mappings of its four surrounding tile centers, which avoids
// visible tile seams. clipLimit is a multiple of the uniform histogram bin
// height; excess mass above the clip is redistributed evenly.
func CLAHE(gray *image.Gray, clipLimit float64) *image.Gray {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < claheTiles || h < claheTiles {
		return gray
	}

	tileW := (w + claheTiles - 1) / claheTiles
	tileH := (h + claheTiles - 1) / claheTiles

	luts := make([][256]uint8, claheTiles*claheTiles)
	for ty := 0; ty < claheTiles; ty++ {
		for tx := 0; tx < claheTiles; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := min(x0+tileW, w), min(y0+tileH, h)
			luts[ty*claheTiles+tx] = tileLUT(gray, bounds, x0, y0, x1, y1, clipLimit)
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		// Position relative to tile centers, for bilinear mapping blend.
		fy := (float64(y)-float64(tileH)/2 + 0.5) / float64(tileH)
		ty0 := clampInt(int(fy), 0, claheTiles-1)
		ty1 := clampInt(ty0+1, 0, claheTiles-1)
		wy := fy - float64(ty0)
		if fy < 0 {
			ty1, wy = ty0, 0
		}

		for x := 0; x < w; x++ {
			fx := (float64(x)-float64(tileW)/2 + 0.5) / float64(tileW)
			tx0 := clampInt(int(fx), 0, claheTiles-1)
			tx1 := clampInt(tx0+1, 0, claheTiles-1)
			wx := fx - float64(tx0)
			if fx < 0 {
				tx1, wx = tx0, 0
			}

			v := gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y
			tl := float64(luts[ty0*claheTiles+tx0][v])
			tr := float64(luts[ty0*claheTiles+tx1][v])
			bl := float64(luts[ty1*claheTiles+tx0][v])
			br := float64(luts[ty1*claheTiles+tx1][v])

			top := tl + (tr-tl)*wx
			bottom := bl + (br-bl)*wx
			out.Pix[y*out.Stride+x] = uint8(top + (bottom-top)*wy + 0.5)
		}
	}
	return out
}

// tileLUT builds the clipped-equalization intensity mapping for one tile.
func tileLUT(gray *image.Gray, bounds image.Rectangle, x0, y0, x1, y1 int, clipLimit float64) [256]uint8 {
	var hist [256]float64
	pixels := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y]++
			pixels++
		}
	}

	var lut [256]uint8
	if pixels == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	clip := clipLimit * float64(pixels) / 256
	excess := 0.0
	for i := range hist {
		if hist[i] > clip {
			excess += hist[i] - clip
			hist[i] = clip
		}
	}
	redistribute := excess / 256
	cum := 0.0
	scale := 255 / float64(pixels)
	for i := range hist {
		cum += hist[i] + redistribute
		lut[i] = uint8(clampFloat(cum*scale, 0, 255) + 0.5)
	}
	return lut
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

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

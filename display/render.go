// go-mfrc522
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-mfrc522.
//
// go-mfrc522 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-mfrc522 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-mfrc522; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package display

import (
	"encoding/binary"
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// Panel colors.
var (
	colorIdle  = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF}
	colorEntry = color.RGBA{R: 0x00, G: 0x80, B: 0x00, A: 0xFF}
	colorExit  = color.RGBA{R: 0x00, G: 0x40, B: 0xA0, A: 0xFF}
)

// Renderer draws two centered lines on an RGBA canvas.
type Renderer struct {
	dc     *gg.Context
	img    *image.RGBA
	width  int
	height int
}

// NewRenderer creates a canvas of the given size. A font that cannot be
// loaded leaves gg's built-in face in place.
func NewRenderer(width, height int, fontPath string, fontSize float64) (*Renderer, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	dc := gg.NewContextForRGBA(img)
	var err error
	if fontPath != "" {
		err = dc.LoadFontFace(fontPath, fontSize)
	}
	return &Renderer{dc: dc, img: img, width: width, height: height}, err
}

// Render draws line1 above line2 on background and returns the canvas.
func (r *Renderer) Render(line1, line2 string, background color.Color) *image.RGBA {
	r.dc.SetColor(background)
	r.dc.Clear()

	r.dc.SetRGB(1, 1, 1)
	w, h := float64(r.width), float64(r.height)
	r.dc.DrawStringAnchored(line1, w/2, h/3, 0.5, 0.5)
	r.dc.DrawStringAnchored(line2, w/2, 2*h/3, 0.5, 0.5)
	return r.img
}

// Image returns the canvas.
func (r *Renderer) Image() *image.RGBA {
	return r.img
}

func eventBackground(entry bool) color.Color {
	if entry {
		return colorEntry
	}
	return colorExit
}

// PackRGB565 converts img to little endian RGB565 rows of stride bytes.
func PackRGB565(img *image.RGBA, stride int, dst []byte) []byte {
	bounds := img.Bounds()
	need := bounds.Dy() * stride
	if cap(dst) < need {
		dst = make([]byte, need)
	}
	dst = dst[:need]

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			i := y*stride + x*2
			if i+1 >= len(dst) {
				break
			}
			c := img.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			pixel := uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
			binary.LittleEndian.PutUint16(dst[i:], pixel)
		}
	}
	return dst
}

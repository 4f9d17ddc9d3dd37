package texture

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/achilleasa/skytrace/asset"
	"github.com/achilleasa/skytrace/types"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// A texture image and its metadata. Texel data is stored as linear RGBA
// floats in row-major order starting from the top-left corner.
type Texture struct {
	// The format of the source image.
	Format Format

	Width  uint32
	Height uint32

	Data []float32
}

// Create a new texture from a Resource. If maxWidth is non-zero and the image
// is wider, it is downsampled to maxWidth preserving its aspect ratio.
func New(res *asset.Resource, maxWidth uint) (*Texture, error) {
	img, err := imaging.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("texture: could not decode %s: %w", res.Path(), err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("texture: image %s has no pixels", res.Path())
	}

	texFmt := detectFormat(img)
	if maxWidth != 0 && uint(bounds.Dx()) > maxWidth {
		img = resize.Resize(maxWidth, 0, img, resize.Bilinear)
	}

	return FromImage(img, texFmt), nil
}

// Create a texture from an already decoded image.
func FromImage(img image.Image, texFmt Format) *Texture {
	bounds := img.Bounds()
	tex := &Texture{
		Format: texFmt,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Data:   make([]float32, bounds.Dx()*bounds.Dy()*4),
	}

	wOffset := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			tex.Data[wOffset] = srgbToLinear(float32(c.R) / 0xffff)
			tex.Data[wOffset+1] = srgbToLinear(float32(c.G) / 0xffff)
			tex.Data[wOffset+2] = srgbToLinear(float32(c.B) / 0xffff)
			tex.Data[wOffset+3] = float32(c.A) / 0xffff
			wOffset += 4
		}
	}

	return tex
}

// Fetch the texel at (x, y) with x and y wrapping around the texture edges.
func (t *Texture) Texel(x, y int) types.Vec4 {
	w, h := int(t.Width), int(t.Height)
	x %= w
	if x < 0 {
		x += w
	}
	y %= h
	if y < 0 {
		y += h
	}

	offset := (y*w + x) * 4
	return types.Vec4{t.Data[offset], t.Data[offset+1], t.Data[offset+2], t.Data[offset+3]}
}

// Sample the texture at (u, v) using bilinear filtering and repeat
// wrapping. The v axis points upwards: v = 0 is the bottom row and v = 1
// the top row.
func (t *Texture) Sample(u, v float32) types.Vec3 {
	// Map to texel space, measured from the texel centers
	fx := u*float32(t.Width) - 0.5
	fy := (1-v)*float32(t.Height) - 0.5

	x0 := int(math.Floor(float64(fx)))
	y0 := int(math.Floor(float64(fy)))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	top := t.Texel(x0, y0).Lerp(t.Texel(x0+1, y0), tx)
	bottom := t.Texel(x0, y0+1).Lerp(t.Texel(x0+1, y0+1), tx)
	return top.Lerp(bottom, ty).Vec3()
}

func detectFormat(img image.Image) Format {
	switch img.(type) {
	case *image.Gray:
		return Luminance8
	case *image.Gray16:
		return Luminance32F
	case *image.RGBA64, *image.NRGBA64:
		return Rgba32F
	default:
		return Rgba8
	}
}

func srgbToLinear(c float32) float32 {
	return float32(math.Pow(float64(c), 2.2))
}

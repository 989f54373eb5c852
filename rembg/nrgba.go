package rembg

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ToNRGBA 转为非预乘的 NRGBA 副本；没有 alpha 的图片得到 A=255
// 本身就是非预乘的来源（NRGBA、NRGBA64、带 tRNS 的调色板）逐像素直接拷贝，不经过预乘
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(b)

	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()*4], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
	case *image.NRGBA64:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				s := src.PixOffset(b.Min.X+x, b.Min.Y+y)
				d := y*dst.Stride + x*4
				// 大端存储，高字节即 >>8
				dst.Pix[d+0] = src.Pix[s+0]
				dst.Pix[d+1] = src.Pix[s+2]
				dst.Pix[d+2] = src.Pix[s+4]
				dst.Pix[d+3] = src.Pix[s+6]
			}
		}
	case *image.Paletted:
		palette := make([]color.NRGBA, len(src.Palette))
		for i, c := range src.Palette {
			palette[i] = toNRGBAColor(c)
		}
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				var c color.NRGBA
				if idx := int(src.Pix[src.PixOffset(b.Min.X+x, b.Min.Y+y)]); idx < len(palette) {
					c = palette[idx]
				}
				setNRGBA(dst, x, y, c)
			}
		}
	case *image.RGBA, *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		// 预乘或本身不透明的来源，draw 的转换是精确的
		draw.Draw(dst, b, img, b.Min, draw.Src)
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				setNRGBA(dst, x, y, toNRGBAColor(img.At(b.Min.X+x, b.Min.Y+y)))
			}
		}
	}
	return dst
}

func toNRGBAColor(c color.Color) color.NRGBA {
	switch v := c.(type) {
	case color.NRGBA:
		return v
	case color.NRGBA64:
		return color.NRGBA{R: uint8(v.R >> 8), G: uint8(v.G >> 8), B: uint8(v.B >> 8), A: uint8(v.A >> 8)}
	case nil:
		return color.NRGBA{}
	default:
		return color.NRGBAModel.Convert(c).(color.NRGBA)
	}
}

// setNRGBA x、y 是相对 Bounds().Min 的偏移
func setNRGBA(img *image.NRGBA, x, y int, c color.NRGBA) {
	i := y*img.Stride + x*4
	img.Pix[i+0], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
}

// HasTransparency 只要存在 A != 255 的像素就返回 true
func HasTransparency(img *image.NRGBA) bool {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := y * img.Stride
		for x := 0; x < b.Dx(); x++ {
			if img.Pix[row+x*4+3] != 255 {
				return true
			}
		}
	}
	return false
}

package rembg

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/chaos-io/iconbg/util"
)

// WhiteThreshold 每个通道都必须严格大于该值才算“近白色”
const WhiteThreshold = 240

// Transparent 替换近白色像素用的全透明白色
var Transparent = color.NRGBA{R: 255, G: 255, B: 255, A: 0}

// WhiteRemover 把近白色像素变成全透明，其余像素保持不变
type WhiteRemover struct{}

func NewWhiteRemover() *WhiteRemover {
	return &WhiteRemover{}
}

// IsNearWhite R、G、B 三个通道分别 > 240，不做亮度加权
func IsNearWhite(c color.NRGBA) bool {
	return c.R > WhiteThreshold && c.G > WhiteThreshold && c.B > WhiteThreshold
}

// Remove 返回新的 *image.NRGBA，不修改输入图片
func (w *WhiteRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dst := ToNRGBA(img)
	w.apply(dst)
	return dst, nil
}

func (w *WhiteRemover) apply(img *image.NRGBA) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := y * img.Stride
		for x := 0; x < b.Dx(); x++ {
			i := row + x*4
			p := img.Pix[i : i+4 : i+4]
			if IsNearWhite(color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}) {
				p[0], p[1], p[2], p[3] = Transparent.R, Transparent.G, Transparent.B, Transparent.A
			}
		}
	}
}

// RemoveWhiteBackground 读取 inputPath，去掉近白色背景，以 PNG 写入 outputPath
// 解码或写入失败时原样返回底层错误
func RemoveWhiteBackground(inputPath, outputPath string) error {
	img, err := util.OpenImage(inputPath)
	if err != nil {
		return err
	}

	out, err := DefaultRemover.Remove(context.Background(), img)
	if err != nil {
		return err
	}

	if err := util.SaveImage(outputPath, out); err != nil {
		return err
	}

	slog.Debug("removed white background", "input", inputPath, "output", outputPath,
		"width", out.Bounds().Dx(), "height", out.Bounds().Dy())
	fmt.Println("Successfully saved transparent icon to", outputPath)
	return nil
}

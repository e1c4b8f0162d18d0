package cutout

import "github.com/chaos-io/matting/raster"

// Mode 合成可视化模式
type Mode string

const (
	// ModePreview 预览最终效果：蒙版以 destination-out 扣掉底图 alpha
	ModePreview Mode = "preview"
	// ModeEdit 编辑反馈：蒙版标记色以 0.6 不透明度叠在底图上
	ModeEdit Mode = "edit"
)

// 手动标记的固定不透明标记色
const (
	MarkR uint8 = 255
	MarkG uint8 = 0
	MarkB uint8 = 0
	MarkA uint8 = 255
)

// editOverlayOpacity 编辑模式下蒙版叠加的固定不透明度
const editOverlayOpacity = 0.6

// Render 把 base 和 mask 合成为显示帧，base/mask 本身都不会被修改
func Render(base, mask *raster.Raster, mode Mode) *raster.Raster {
	out := base.Clone()
	if mode == ModeEdit {
		overlayMask(out, mask)
	} else {
		DestinationOut(out, mask)
	}
	return out
}

// DestinationOut 原地执行 destination-out：
// dst.alpha *= (1 - overlay.alpha/255)，RGB 通道不动
// 既用于预览也用于把蒙版提交进底图
func DestinationOut(dst, overlay *raster.Raster) {
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = uint8(int(dst.Pix[i]) * (255 - int(overlay.Pix[i])) / 255)
	}
}

// overlayMask 标准 source-over，把蒙版按固定 0.6 不透明度叠到 dst 上
func overlayMask(dst, mask *raster.Raster) {
	for i := 0; i < len(dst.Pix); i += 4 {
		ma := mask.Pix[i+3]
		if ma == 0 {
			continue
		}

		sa := float64(ma) / 255 * editOverlayOpacity
		da := float64(dst.Pix[i+3]) / 255
		outA := sa + da*(1-sa)
		if outA <= 0 {
			continue
		}

		blend := func(src, d uint8) uint8 {
			v := (float64(src)*sa + float64(d)*da*(1-sa)) / outA
			return uint8(v + 0.5)
		}
		dst.Pix[i] = blend(mask.Pix[i], dst.Pix[i])
		dst.Pix[i+1] = blend(mask.Pix[i+1], dst.Pix[i+1])
		dst.Pix[i+2] = blend(mask.Pix[i+2], dst.Pix[i+2])
		dst.Pix[i+3] = uint8(outA*255 + 0.5)
	}
}

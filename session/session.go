package session

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/chaos-io/matting/cutout"
	"github.com/chaos-io/matting/raster"
)

const (
	baseHistoryLimit = 30
	maskHistoryLimit = 20
)

var (
	// ErrStrokeActive 上一笔还没结束就开新笔
	ErrStrokeActive = errors.New("stroke already active")
	// ErrNoStroke 没有进行中的笔画
	ErrNoStroke = errors.New("no active stroke")
)

// Session 一张图的编辑会话，持有全部分层状态
// 单写者：调用方负责串行化手势，会话内部不加锁
type Session struct {
	base *raster.Raster // 当前已提交的处理结果
	mask *raster.Raster // 未提交的手动标记，始终与 base 等尺寸

	baseHist *History // 栈顶 == 当前 base 状态，深度下限 1
	maskHist *History // 每笔开始时的蒙版快照，可以为空

	stroke *strokeState
}

// strokeState 一次 pointer-down 到 pointer-up 的笔画作用域
type strokeState struct {
	tool   cutout.BrushTool
	radius int
}

// New 用解码好的图像建会话：底图、全透明蒙版和两个历史栈
// 零尺寸输入在建任何图层之前直接失败
func New(img image.Image) (*Session, error) {
	base, err := raster.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	return newWithBase(base)
}

func newWithBase(base *raster.Raster) (*Session, error) {
	mask, err := raster.New(base.W, base.H)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}

	s := &Session{
		base:     base,
		mask:     mask,
		baseHist: NewHistory(baseHistoryLimit),
		maskHist: NewHistory(maskHistoryLimit),
	}
	s.baseHist.Push(s.base) // 种子快照
	return s, nil
}

// Size 当前图层尺寸
func (s *Session) Size() (int, int) { return s.base.W, s.base.H }

// BaseImage 当前底图的副本，交给 AI 抠图协作方时用
func (s *Session) BaseImage() *image.NRGBA { return s.base.ToImage() }

// RunRemoval 在底图上执行自动去除，完成后压一条 base 快照
// tolerance/smoothing 的范围由调用方夹取，这里不校验
func (s *Session) RunRemoval(algo cutout.Algorithm, tolerance, smoothing int) error {
	if err := cutout.Remove(s.base, algo, tolerance, smoothing); err != nil {
		return err
	}
	s.baseHist.Push(s.base)
	slog.Debug("removal applied", "algorithm", algo, "tolerance", tolerance, "smoothing", smoothing)
	return nil
}

// BeginStroke 开始一次笔画作用域
// 双层模式（add/subtract）在画第一个点之前压且只压一条蒙版快照；
// 指针没动就抬起会留下一条空操作的撤销项，这是既有行为，不做抑制
func (s *Session) BeginStroke(tool cutout.BrushTool, radius int) error {
	if s.stroke != nil {
		return ErrStrokeActive
	}
	if tool != cutout.BrushErase {
		s.maskHist.Push(s.mask)
	}
	s.stroke = &strokeState{tool: tool, radius: radius}
	return nil
}

// Paint 在进行中的笔画里画一个点，越界部分静默裁掉
func (s *Session) Paint(x, y int) error {
	if s.stroke == nil {
		return ErrNoStroke
	}
	switch s.stroke.tool {
	case cutout.BrushErase:
		// 单层遗留模式：直接破坏底图，立刻生效，不进历史
		cutout.EraseCircle(s.base, x, y, s.stroke.radius)
	case cutout.BrushAdd:
		cutout.PaintCircle(s.mask, x, y, s.stroke.radius)
	case cutout.BrushSubtract:
		cutout.EraseCircle(s.mask, x, y, s.stroke.radius)
	}
	return nil
}

// EndStroke 结束笔画作用域，没有进行中的笔画时是空操作
func (s *Session) EndStroke() {
	s.stroke = nil
}

// Apply 把蒙版以 destination-out 提交进底图，
// 然后清空蒙版和蒙版历史，压一条提交后的 base 快照
func (s *Session) Apply() {
	cutout.DestinationOut(s.base, s.mask)
	s.mask.Clear()
	s.maskHist.Clear()
	s.baseHist.Push(s.base)
}

// UndoTier 一次撤销动到了哪一层
type UndoTier string

const (
	UndoMask UndoTier = "mask" // 撤掉了一笔未提交的手动编辑
	UndoBase UndoTier = "base" // 回退了一次已提交的操作
	UndoNone UndoTier = "none" // 两层都没有可撤销的内容，空操作
)

// UndoResult 撤销结果
type UndoResult struct {
	Tier UndoTier
	// MaskEmpty 为 true 表示蒙版历史已空，没有待提交的手动编辑了
	MaskEmpty bool
}

// Undo 两级撤销：
// 蒙版历史非空时只撤蒙版（未提交的编辑永远先于已提交状态被撤销），
// 否则 base 历史深度 > 1 时回退一次提交；都不满足就是空操作
func (s *Session) Undo() UndoResult {
	if snap, ok := s.maskHist.Pop(); ok {
		s.mask = snap
		return UndoResult{Tier: UndoMask, MaskEmpty: s.maskHist.Len() == 0}
	}
	if s.baseHist.Len() > 1 {
		s.baseHist.Drop()
		// 同一会话里 base 快照尺寸恒定，就地拷回栈顶即可
		s.base.CopyFrom(s.baseHist.Top())
		return UndoResult{Tier: UndoBase}
	}
	return UndoResult{Tier: UndoNone}
}

// Override AI 抠图等外部来源的整图替换：
// 无条件换掉底图，蒙版按新尺寸重建，两个历史栈重置为一条新的 base 快照
// 任何一步失败都不触碰现有状态
func (s *Session) Override(img image.Image) error {
	base, err := raster.FromImage(img)
	if err != nil {
		return fmt.Errorf("override: %w", err)
	}
	mask, err := raster.New(base.W, base.H)
	if err != nil {
		return fmt.Errorf("override: %w", err)
	}

	s.base = base
	s.mask = mask
	s.baseHist = NewHistory(baseHistoryLimit)
	s.maskHist = NewHistory(maskHistoryLimit)
	s.baseHist.Push(s.base)
	s.stroke = nil
	return nil
}

// Render 合成当前显示帧，不修改任何图层
func (s *Session) Render(mode cutout.Mode) *raster.Raster {
	return cutout.Render(s.base, s.mask, mode)
}

// Export 把当前合成结果（预览语义）编码为 PNG 写入 w
func (s *Session) Export(w io.Writer) error {
	return s.Render(cutout.ModePreview).EncodePNG(w)
}

// BaseHistoryLen 当前 base 快照栈深，>= 1
func (s *Session) BaseHistoryLen() int { return s.baseHist.Len() }

// MaskHistoryLen 当前蒙版快照栈深
func (s *Session) MaskHistoryLen() int { return s.maskHist.Len() }

package ambient

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsOverlay displays the current FPS and TPS in the top-left corner. The
// text is re-rendered every half second.
type fpsOverlay struct {
	img     *ebiten.Image
	elapsed float64
	op      ebiten.DrawImageOptions
}

func newFPSOverlay() *fpsOverlay {
	// 100x32 fits "FPS: 60.0\nTPS: 60.0"
	f := &fpsOverlay{img: ebiten.NewImage(100, 32)}
	f.elapsed = 0.5
	return f
}

func (f *fpsOverlay) update(dt float64) {
	f.elapsed += dt
	if f.elapsed < 0.5 {
		return
	}
	f.elapsed = 0

	f.img.Clear()
	f.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(f.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
}

func (f *fpsOverlay) draw(dst *ebiten.Image) {
	f.op.GeoM.Reset()
	f.op.GeoM.Translate(4, 4)
	dst.DrawImage(f.img, &f.op)
}

package ambient

import "testing"

func TestInputAdapterPointerDisplacement(t *testing.T) {
	var a inputAdapter
	if _, ok := a.takePointer(); ok {
		t.Fatal("takePointer without a recorded sample returned ok")
	}

	a.recordPointer(10, 20)
	s, ok := a.takePointer()
	if !ok {
		t.Fatal("expected a pointer sample")
	}
	if s.X != 10 || s.Y != 20 || s.DX != 0 || s.DY != 0 {
		t.Errorf("first sample = %+v, want no displacement", s)
	}

	a.recordPointer(11, 25)
	a.recordPointer(13, 26)
	s, _ = a.takePointer()
	if s.X != 13 || s.Y != 26 || s.DX != 3 || s.DY != 6 {
		t.Errorf("coalesced sample = %+v, want (13,26) moved (3,6)", s)
	}
	if _, ok := a.takePointer(); ok {
		t.Error("sample consumed twice")
	}
}

func TestInputAdapterResizeLatestWins(t *testing.T) {
	var a inputAdapter
	a.recordResize(Viewport{Width: 100, Height: 100})
	a.recordResize(Viewport{Width: 300, Height: 200})
	vp, ok := a.takeResize()
	if !ok || vp != (Viewport{300, 200}) {
		t.Errorf("takeResize = %+v, %v; want 300x200", vp, ok)
	}
	if _, ok := a.takeResize(); ok {
		t.Error("resize consumed twice")
	}
}

func TestInputAdapterReset(t *testing.T) {
	var a inputAdapter
	a.recordPointer(5, 5)
	a.takePointer()
	a.recordPointer(50, 50)
	a.reset()
	if _, ok := a.takePointer(); ok {
		t.Error("pending pointer survived reset")
	}
	a.recordPointer(60, 60)
	if s, _ := a.takePointer(); s.DX != 0 || s.DY != 0 {
		t.Errorf("sample after reset = %+v, want no displacement", s)
	}
}

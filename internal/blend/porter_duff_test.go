package blend

import "testing"

type rgba struct{ r, g, b, a byte }

func TestPorterDuffModes(t *testing.T) {
	red := rgba{255, 0, 0, 255}
	halfBlue := rgba{0, 0, 128, 128}
	clear := rgba{}

	tests := []struct {
		name     string
		mode     BlendMode
		src, dst rgba
		want     rgba
	}{
		{"clear", BlendClear, red, halfBlue, clear},
		{"source", BlendSource, halfBlue, red, halfBlue},
		{"destination", BlendDestination, red, halfBlue, halfBlue},
		{"opaque over anything", BlendSourceOver, red, halfBlue, red},
		{"over transparent", BlendSourceOver, halfBlue, clear, halfBlue},
		{"half over opaque", BlendSourceOver, halfBlue, red, rgba{127, 0, 128, 255}},
		{"destination over", BlendDestinationOver, red, halfBlue, rgba{127, 0, 128, 255}},
		{"plus clamps", BlendPlus, red, rgba{255, 10, 0, 255}, rgba{255, 10, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := GetBlendFunc(tt.mode)
			r, g, b, a := fn(tt.src.r, tt.src.g, tt.src.b, tt.src.a, tt.dst.r, tt.dst.g, tt.dst.b, tt.dst.a)
			if got := (rgba{r, g, b, a}); got != tt.want {
				t.Errorf("%v: got %+v, want %+v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestGetBlendFuncUnknownIsSourceOver(t *testing.T) {
	fn := GetBlendFunc(BlendMode(200))
	r, g, b, a := fn(0, 0, 128, 128, 255, 0, 0, 255)
	if r != 127 || g != 0 || b != 128 || a != 255 {
		t.Errorf("unknown mode = (%d,%d,%d,%d), want source-over (127,0,128,255)", r, g, b, a)
	}
}

func TestBlendModeString(t *testing.T) {
	if s := BlendSourceOver.String(); s != "source-over" {
		t.Errorf("String() = %q, want %q", s, "source-over")
	}
	if s := BlendMode(99).String(); s != "unknown" {
		t.Errorf("String() = %q, want %q", s, "unknown")
	}
}

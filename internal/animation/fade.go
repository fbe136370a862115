package animation

type fade struct {
	// out also clears the targets, which end invisible.
	out          bool
	fillAlphas   []float64
	strokeAlphas []float64
}

// NewFadeIn fades copies of the targets from transparent to their current opacity.
func NewFadeIn(cfg Config) (*Animation, error) {
	return newAnimation(KindFadeIn, cfg, &fade{}, false)
}

// NewFadeOut fades copies of the targets from their current opacity to
// transparent. The targets are left fully transparent.
func NewFadeOut(cfg Config) (*Animation, error) {
	return newAnimation(KindFadeOut, cfg, &fade{out: true}, true)
}

func (f *fade) begin(a *Animation) error {
	f.fillAlphas = make([]float64, len(a.targets))
	f.strokeAlphas = make([]float64, len(a.targets))
	for i, t := range a.targets {
		f.fillAlphas[i] = t.FillOpacity()
		f.strokeAlphas[i] = t.StrokeOpacity()
	}
	for _, o := range a.animated {
		o.SetOpacity(0)
	}
	if f.out {
		for _, t := range a.targets {
			t.SetOpacity(0)
		}
	}
	return nil
}

func (f *fade) apply(a *Animation, i int) {
	v := a.easeVal(i)
	for j, o := range a.animated {
		o.SetFillOpacity(v * f.fillAlphas[j])
		o.SetStrokeOpacity(v * f.strokeAlphas[j])
	}
}

func (f *fade) finish(*Animation) {}

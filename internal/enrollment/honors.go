package enrollment

import "math/rand/v2"

// honorsChance is the compounding honors probability of one enrollment pass.
// It starts at base*(1+compound)^held and grows by (1+compound) each time
// an honors enrollment is granted during the pass.
type honorsChance struct {
	p        float64
	compound float64
	rng      *rand.Rand
}

func newHonorsChance(params Params, held int, rng *rand.Rand) *honorsChance {
	p := params.Honors
	for range held {
		p *= 1 + params.HonorsCompound
		if p >= 1 {
			break
		}
	}
	return &honorsChance{p: min(p, 1), compound: params.HonorsCompound, rng: rng}
}

// Draw consumes one random number and reports whether honors was granted.
func (h *honorsChance) Draw() bool {
	if h.rng.Float64() >= h.p {
		return false
	}
	h.p = min(h.p*(1+h.compound), 1)
	return true
}

// Chance returns the current probability.
func (h *honorsChance) Chance() float64 { return h.p }

package bp

// Perceptron is one table entry. Weights[0] is the bias; Weights[i+1] pairs
// with history bit i, bit 0 being the most recent outcome.
type Perceptron struct {
	Weights []Weight
}

func newPerceptron(historyLength uint) Perceptron {
	return Perceptron{Weights: make([]Weight, historyLength+1)}
}

// Output returns y = bias + sum(+w for taken bits, -w for not-taken bits).
func (p *Perceptron) Output(history uint64) int32 {
	y := int32(p.Weights[0])
	for i, w := range p.Weights[1:] {
		if (history>>uint(i))&1 == 1 {
			y += int32(w)
		} else {
			y -= int32(w)
		}
	}
	return y
}

// Train moves every weight one step toward the outcome. The bias follows the
// outcome; a history weight is reinforced when its bit agrees with it.
func (p *Perceptron) Train(history uint64, taken bool, b Bounds) {
	if taken {
		p.Weights[0] = p.Weights[0].Inc(b)
	} else {
		p.Weights[0] = p.Weights[0].Dec(b)
	}

	for i := 1; i < len(p.Weights); i++ {
		bit := (history>>uint(i-1))&1 == 1
		if bit == taken {
			p.Weights[i] = p.Weights[i].Inc(b)
		} else {
			p.Weights[i] = p.Weights[i].Dec(b)
		}
	}
}

func (p *Perceptron) reset() {
	for i := range p.Weights {
		p.Weights[i] = 0
	}
}

// directionOf applies the sign rule shared by prediction and training.
func directionOf(y int32) Direction {
	if y >= 0 {
		return Taken
	}
	return NotTaken
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

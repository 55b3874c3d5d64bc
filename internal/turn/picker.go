package turn

import (
	"math/rand"
	"time"
)

// Picker breaks ties between equally ranked words.
type Picker struct {
	rnd *rand.Rand
}

// NewPicker returns a Picker seeded with the current time.
func NewPicker() *Picker {
	return NewPickerWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewPickerWithSource returns a Picker drawing from src.
func NewPickerWithSource(src rand.Source) *Picker {
	return &Picker{rnd: rand.New(src)}
}

// Pick returns a uniform index in [0, n).
func (p *Picker) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return p.rnd.Intn(n)
}

// Package veil implements the Dark Veil dice rules: dice burn on a 1,
// score on a 5 or 6, and a 6 explodes into a bonus re-roll.
package veil

import "strconv"

// Outcome is the result of one trial: a success count, or CritFail.
type Outcome int

// CritFail is reported when every die ended the trial burned.
const CritFail Outcome = -1

// Die faces with special meaning. Faces 2-4 do nothing.
const (
	Sides       = 6
	BurnFace    = 1
	SuccessFace = 5
	ExplodeFace = 6
)

func (o Outcome) IsCritFail() bool { return o == CritFail }

func (o Outcome) String() string {
	if o.IsCritFail() {
		return "crit-fail"
	}
	return strconv.Itoa(int(o))
}

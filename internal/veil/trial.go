package veil

import (
	"fmt"

	"github.com/MJE43/darkveil/internal/engine"
)

// Trial holds the state of one simulation run. Burned dice stay burned
// until the trial ends.
type Trial struct {
	Dice      int `json:"dice"`
	Rolls     int `json:"rolls"`
	Successes int `json:"successes"`
	// Actions counts roll actions actually performed; it is below Rolls
	// when every die burned early.
	Actions int      `json:"actions"`
	Burned  []bool   `json:"burned"`
	Trace   []Action `json:"trace,omitempty"`

	burnedCount int
	traced      bool
	faces       []int
	active      []int
}

// Action records one roll action of a traced trial.
type Action struct {
	Index int       `json:"index"`
	Dice  []DieRoll `json:"dice"`
}

// DieRoll records every face one die showed during a roll action,
// explosion re-rolls included.
type DieRoll struct {
	Die       int   `json:"die"`
	Faces     []int `json:"faces"`
	Successes int   `json:"successes"`
	Burned    bool  `json:"burned"`
}

// NewTrial validates the configuration and returns a fresh trial.
func NewTrial(numDice, numRolls int) (*Trial, error) {
	if numDice < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDice, numDice)
	}
	if numRolls < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRolls, numRolls)
	}
	return &Trial{
		Dice:   numDice,
		Rolls:  numRolls,
		Burned: make([]bool, numDice),
		faces:  make([]int, numDice),
		active: make([]int, 0, numDice),
	}, nil
}

// RunTrial plays one trial of numDice dice over numRolls roll actions and
// returns its outcome.
func RunTrial(src engine.Source, numDice, numRolls int) (Outcome, error) {
	t, err := NewTrial(numDice, numRolls)
	if err != nil {
		return 0, err
	}
	if err := t.Play(src); err != nil {
		return 0, err
	}
	return t.Outcome(), nil
}

// PlayTrial is RunTrial with a full per-die trace attached to the result.
func PlayTrial(src engine.Source, numDice, numRolls int) (*Trial, error) {
	t, err := NewTrial(numDice, numRolls)
	if err != nil {
		return nil, err
	}
	t.traced = true
	if err := t.Play(src); err != nil {
		return nil, err
	}
	return t, nil
}

// Play runs every roll action. All active dice get their initial face first,
// then each die is resolved in index order, explosions included, before the
// next die. The loop stops early once no die is active.
func (t *Trial) Play(src engine.Source) error {
	for action := 0; action < t.Rolls; action++ {
		t.active = t.active[:0]
		for die, burned := range t.Burned {
			if !burned {
				t.active = append(t.active, die)
			}
		}
		if len(t.active) == 0 {
			break
		}

		for i := range t.active {
			face, err := draw(src)
			if err != nil {
				return err
			}
			t.faces[i] = face
		}

		var rec *Action
		if t.traced {
			t.Trace = append(t.Trace, Action{Index: action, Dice: make([]DieRoll, 0, len(t.active))})
			rec = &t.Trace[len(t.Trace)-1]
		}

		for i, die := range t.active {
			var roll *DieRoll
			if rec != nil {
				rec.Dice = append(rec.Dice, DieRoll{Die: die})
				roll = &rec.Dice[len(rec.Dice)-1]
			}
			if err := t.resolve(src, die, t.faces[i], roll); err != nil {
				return err
			}
		}
		t.Actions++
	}
	return nil
}

// resolve applies one face to a die and runs its explosion chain.
func (t *Trial) resolve(src engine.Source, die, face int, roll *DieRoll) error {
	before := t.Successes
	defer func() {
		if roll != nil {
			roll.Successes = t.Successes - before
			roll.Burned = t.Burned[die]
		}
	}()

	for {
		if roll != nil {
			roll.Faces = append(roll.Faces, face)
		}
		switch face {
		case BurnFace:
			t.burn(die)
			return nil
		case SuccessFace:
			t.Successes++
			return nil
		case ExplodeFace:
			t.Successes++
		default:
			return nil
		}

		next, err := draw(src)
		if err != nil {
			return err
		}
		face = next
	}
}

func (t *Trial) burn(die int) {
	if !t.Burned[die] {
		t.Burned[die] = true
		t.burnedCount++
	}
}

// BurnedCount reports how many dice are burned.
func (t *Trial) BurnedCount() int { return t.burnedCount }

// Outcome is CritFail when every die is burned, otherwise the success count.
func (t *Trial) Outcome() Outcome {
	if t.burnedCount == t.Dice {
		return CritFail
	}
	return Outcome(t.Successes)
}

func draw(src engine.Source) (int, error) {
	face, err := src.Roll(Sides)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSource, err)
	}
	return face, nil
}

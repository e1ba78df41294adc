package recommend

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

//go:embed banks.json
var defaultBanksJSON []byte

// Tier counts are fixed by the classifier: each tier selects exactly one entry.
const (
	dietTierCount     = 3
	activityTierCount = 3
)

var ErrInvalidBanks = errors.New("invalid content banks")

// Routine is a named strength training split with a long-form description.
type Routine struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Banks holds the narrative content that plans are assembled from.
// Diet and Activity are indexed by [Tier]; Routines and CardioIdeas are drawn at random.
type Banks struct {
	Version     string    `json:"version"`
	Diet        []string  `json:"diet"`
	Activity    []string  `json:"activity"`
	Routines    []Routine `json:"routines"`
	CardioIdeas []string  `json:"cardio_ideas"`
}

//nolint:gochecknoglobals // parsed once, returned by value.
var defaultBanks = sync.OnceValues(func() (Banks, error) {
	return LoadBanks(bytes.NewReader(defaultBanksJSON))
})

// DefaultBanks returns the content banks shipped with the binary.
func DefaultBanks() (Banks, error) {
	banks, err := defaultBanks()
	if err != nil {
		return Banks{}, err
	}
	return banks.clone(), nil
}

// LoadBanks decodes banks from JSON and validates them.
func LoadBanks(r io.Reader) (Banks, error) {
	var banks Banks
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&banks); err != nil {
		return Banks{}, fmt.Errorf("decode banks: %w", err)
	}
	if err := banks.validate(); err != nil {
		return Banks{}, err
	}
	return banks, nil
}

func (b Banks) validate() error {
	var errs []error
	if len(b.Diet) != dietTierCount {
		errs = append(errs, fmt.Errorf("%w: diet bank has %d entries, want %d", ErrInvalidBanks, len(b.Diet), dietTierCount))
	}
	if len(b.Activity) != activityTierCount {
		errs = append(errs, fmt.Errorf("%w: activity bank has %d entries, want %d",
			ErrInvalidBanks, len(b.Activity), activityTierCount))
	}
	if len(b.Routines) == 0 {
		errs = append(errs, fmt.Errorf("%w: routine bank is empty", ErrInvalidBanks))
	}
	if len(b.CardioIdeas) == 0 {
		errs = append(errs, fmt.Errorf("%w: cardio bank is empty", ErrInvalidBanks))
	}
	for name, texts := range map[string][]string{"diet": b.Diet, "activity": b.Activity, "cardio": b.CardioIdeas} {
		for i, text := range texts {
			if text == "" {
				errs = append(errs, fmt.Errorf("%w: %s entry %d is empty", ErrInvalidBanks, name, i))
			}
		}
	}
	for i, routine := range b.Routines {
		if routine.Name == "" || routine.Description == "" {
			errs = append(errs, fmt.Errorf("%w: routine %d is incomplete", ErrInvalidBanks, i))
		}
	}
	return errors.Join(errs...)
}

// clone copies the slices so callers cannot modify shared bank content.
func (b Banks) clone() Banks {
	return Banks{
		Version:     b.Version,
		Diet:        append([]string(nil), b.Diet...),
		Activity:    append([]string(nil), b.Activity...),
		Routines:    append([]Routine(nil), b.Routines...),
		CardioIdeas: append([]string(nil), b.CardioIdeas...),
	}
}

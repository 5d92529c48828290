package dataset

import "fmt"

const (
	colRosterName  = "氏名"
	colRosterSweet = "Sweet"
)

// Roster maps shift-schedule (Sweet) operator names to the canonical name.
type Roster struct {
	bySweet map[string]string
}

func LoadRoster(path string) (*Roster, error) {
	t, err := OpenTable(path)
	if err != nil {
		return nil, err
	}
	return readRoster(t)
}

func readRoster(t *Table) (*Roster, error) {
	cols, err := t.Columns(colRosterName, colRosterSweet)
	if err != nil {
		return nil, fmt.Errorf("roster: %w", err)
	}
	r := &Roster{bySweet: map[string]string{}}
	for i := 0; i < t.Len(); i++ {
		name := t.Cell(i, cols[0])
		if name == "" {
			continue
		}
		if s := t.Cell(i, cols[1]); s != "" {
			r.bySweet[s] = name
		}
	}
	return r, nil
}

// FromSweet resolves a shift-schedule (Sweet) name.
func (r *Roster) FromSweet(name string) (string, bool) {
	n, ok := r.bySweet[name]
	return n, ok
}

// Len is the number of schedule names the roster resolves.
func (r *Roster) Len() int { return len(r.bySweet) }

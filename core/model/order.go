package model

// order.go - Sibling-list ordering and deletion operations
// Senses and subsenses share one recursive type, so the same functions serve
// both levels. Operations never mutate the list on error, and every
// successful mutation leaves sibling orders contiguous 0..n-1.

import (
	"fmt"

	"github.com/openlexica/liftcurator/core/errors"
)

// Renumber assigns contiguous 0-based order values to list from its current
// position, discarding any stale stored values.
func Renumber(list []*Sense) {
	for i, s := range list {
		s.Order = i
	}
}

// RenumberTree renumbers list and, recursively, every subsense list below it.
func RenumberTree(list []*Sense) {
	Renumber(list)
	for _, s := range list {
		RenumberTree(s.Subsenses)
	}
}

// indexOf returns the position of the sense with the given id, or an error if
// the id is absent or ambiguous within the sibling list.
func indexOf(list []*Sense, id string) (int, error) {
	idx := -1
	for i, s := range list {
		if s.ID == id {
			if idx >= 0 {
				return 0, &errors.ValidationError{
					Field:   "id",
					Value:   id,
					Message: "duplicate id within sibling list",
				}
			}
			idx = i
		}
	}
	if idx < 0 {
		return 0, errors.NewNotFound("sense", id)
	}
	return idx, nil
}

// MoveSense moves the sense with the given id to newPos among its siblings,
// shifting intervening members, and returns the renumbered list. Moving a
// sense to its current position is a no-op. Returns NotFoundError for an
// unknown id and ValidationError for an out-of-range position; the list is
// unchanged on error.
func MoveSense(list []*Sense, id string, newPos int) ([]*Sense, error) {
	if newPos < 0 || newPos >= len(list) {
		return nil, &errors.ValidationError{
			Field:   "position",
			Value:   fmt.Sprintf("%d", newPos),
			Message: fmt.Sprintf("out of range [0, %d)", len(list)),
		}
	}
	cur, err := indexOf(list, id)
	if err != nil {
		return nil, err
	}
	if cur == newPos {
		Renumber(list)
		return list, nil
	}

	moved := list[cur]
	list = append(list[:cur], list[cur+1:]...)
	list = append(list[:newPos], append([]*Sense{moved}, list[newPos:]...)...)
	Renumber(list)
	return list, nil
}

// DeleteSense removes the sense with the given id and renumbers the remaining
// siblings to close the gap. Returns NotFoundError for an unknown id; the
// list is unchanged on error.
func DeleteSense(list []*Sense, id string) ([]*Sense, error) {
	cur, err := indexOf(list, id)
	if err != nil {
		return nil, err
	}
	list = append(list[:cur], list[cur+1:]...)
	Renumber(list)
	return list, nil
}

// FindSense locates a sense by id anywhere in the tree rooted at list,
// descending into subsenses. Returns nil when absent.
func FindSense(list []*Sense, id string) *Sense {
	for _, s := range list {
		if s.ID == id {
			return s
		}
		if found := FindSense(s.Subsenses, id); found != nil {
			return found
		}
	}
	return nil
}

// MoveSense moves one of the entry's top-level senses.
func (e *Entry) MoveSense(id string, newPos int) error {
	list, err := MoveSense(e.Senses, id, newPos)
	if err != nil {
		return err
	}
	e.Senses = list
	return nil
}

// DeleteSense removes one of the entry's top-level senses.
func (e *Entry) DeleteSense(id string) error {
	list, err := DeleteSense(e.Senses, id)
	if err != nil {
		return err
	}
	e.Senses = list
	return nil
}

// MoveSubsense moves one of the sense's direct subsenses.
func (s *Sense) MoveSubsense(id string, newPos int) error {
	list, err := MoveSense(s.Subsenses, id, newPos)
	if err != nil {
		return err
	}
	s.Subsenses = list
	return nil
}

// DeleteSubsense removes one of the sense's direct subsenses.
func (s *Sense) DeleteSubsense(id string) error {
	list, err := DeleteSense(s.Subsenses, id)
	if err != nil {
		return err
	}
	s.Subsenses = list
	return nil
}

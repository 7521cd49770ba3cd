package usecase

import "fmt"

// AdminSet holds the identities allowed to organize events.
type AdminSet struct {
	ids map[int64]struct{}
}

func NewAdminSet(identities []int64) AdminSet {
	ids := make(map[int64]struct{}, len(identities))
	for _, id := range identities {
		if id > 0 {
			ids[id] = struct{}{}
		}
	}
	return AdminSet{ids: ids}
}

func (a AdminSet) IsAdmin(identity int64) bool {
	_, ok := a.ids[identity]
	return ok
}

func (a AdminSet) Len() int {
	return len(a.ids)
}

func (a AdminSet) require(identity int64) error {
	if !a.IsAdmin(identity) {
		return fmt.Errorf("%w: identity=%d is not an organizer", ErrUnauthorized, identity)
	}
	return nil
}

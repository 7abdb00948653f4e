package signup

import (
	"strings"

	"github.com/google/uuid"
)

// RegistrantID is the roster id of the person filling in the form. That
// entry mirrors the top-level identity fields and is never removable; the
// UI is responsible for not offering its removal.
const RegistrantID = "registrant"

const maxRosterSize = 3

type Member struct {
	ID        string
	FirstName string
	LastName  string
	// Name is derived from FirstName and LastName, kept in sync by
	// UpdateMember.
	Name             string
	Email            string
	Phone            string
	JobTitle         string
	IsPrimaryContact bool
}

func memberDisplayName(firstName, lastName string) string {
	return strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
}

// AddMember appends a blank roster entry. No-op once the roster is full.
func (s *State) AddMember() *Member {
	if len(s.Members) >= maxRosterSize {
		return nil
	}

	s.Members = append(s.Members, Member{
		ID: uuid.NewString(),
	})
	return &s.Members[len(s.Members)-1]
}

// RemoveMember deletes the entry with the given id. If the removed entry
// was the primary contact, the new first entry is promoted so the
// exactly-one-primary invariant holds whenever the roster is non-empty.
func (s *State) RemoveMember(id string) {
	idx := s.memberIndex(id)
	if idx < 0 {
		return
	}

	wasPrimary := s.Members[idx].IsPrimaryContact
	s.Members = append(s.Members[:idx], s.Members[idx+1:]...)

	if wasPrimary && len(s.Members) > 0 {
		s.SetPrimaryContact(s.Members[0].ID)
	}
}

// UpdateMember sets a single field on the entry with the given id. Editing
// either name part recomputes the derived display name.
func (s *State) UpdateMember(id string, field string, value string) {
	idx := s.memberIndex(id)
	if idx < 0 {
		return
	}

	m := &s.Members[idx]
	switch field {
	case "firstName":
		m.FirstName = value
	case "lastName":
		m.LastName = value
	case "email":
		m.Email = value
	case "phone":
		m.Phone = value
	case "jobTitle":
		m.JobTitle = value
	}

	if field == "firstName" || field == "lastName" {
		m.Name = memberDisplayName(m.FirstName, m.LastName)
	}
}

// SetPrimaryContact makes the entry with the given id the single primary
// contact, clearing the flag everywhere else.
func (s *State) SetPrimaryContact(id string) {
	if s.memberIndex(id) < 0 {
		return
	}

	for i := range s.Members {
		s.Members[i].IsPrimaryContact = s.Members[i].ID == id
	}
}

// PrimaryContact returns the current primary contact, or nil when the
// roster has none.
func (s *State) PrimaryContact() *Member {
	for i := range s.Members {
		if s.Members[i].IsPrimaryContact {
			return &s.Members[i]
		}
	}
	return nil
}

// SyncRegistrantMember mirrors the top-level identity fields into the
// registrant roster entry, creating it as primary when the roster is empty.
func (s *State) SyncRegistrantMember() {
	idx := s.memberIndex(RegistrantID)
	if idx < 0 {
		s.Members = append([]Member{{
			ID:               RegistrantID,
			IsPrimaryContact: len(s.Members) == 0,
		}}, s.Members...)
		idx = 0
	}

	m := &s.Members[idx]
	m.FirstName = s.FirstName
	m.LastName = s.Surname
	m.Name = memberDisplayName(s.FirstName, s.Surname)
	m.Email = s.Email
}

func (s *State) memberIndex(id string) int {
	for i := range s.Members {
		if s.Members[i].ID == id {
			return i
		}
	}
	return -1
}

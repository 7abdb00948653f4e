package signup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddMember(t *testing.T) {
	t.Run("new entries get unique ids", func(t *testing.T) {
		s := NewState()

		a := s.AddMember()
		b := s.AddMember()

		assert.NotNil(t, a)
		assert.NotNil(t, b)
		assert.NotEqual(t, s.Members[0].ID, s.Members[1].ID)
	})

	t.Run("roster caps at three entries", func(t *testing.T) {
		s := NewState()
		s.AddMember()
		s.AddMember()
		s.AddMember()

		assert.Nil(t, s.AddMember())
		assert.Len(t, s.Members, 3)
	})
}

func TestRemoveMember(t *testing.T) {
	t.Run("removing the primary promotes the new first entry", func(t *testing.T) {
		s := NewState()
		s.FirstName = "Jane"
		s.Surname = "Doe"
		s.SyncRegistrantMember()
		extraID := s.AddMember().ID

		assert.True(t, s.Members[0].IsPrimaryContact)

		s.RemoveMember(RegistrantID)

		assert.Len(t, s.Members, 1)
		assert.Equal(t, extraID, s.Members[0].ID)
		assert.True(t, s.Members[0].IsPrimaryContact)
	})

	t.Run("removing a non-primary keeps the primary", func(t *testing.T) {
		s := NewState()
		s.SyncRegistrantMember()
		extra := s.AddMember()

		s.RemoveMember(extra.ID)

		assert.Len(t, s.Members, 1)
		assert.Equal(t, RegistrantID, s.PrimaryContact().ID)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		s := NewState()
		s.SyncRegistrantMember()

		s.RemoveMember("nope")

		assert.Len(t, s.Members, 1)
	})
}

func TestUpdateMember(t *testing.T) {
	s := NewState()
	m := s.AddMember()

	s.UpdateMember(m.ID, "firstName", "Sam")
	assert.Equal(t, "Sam", s.Members[0].Name)

	s.UpdateMember(m.ID, "lastName", "Smith")
	assert.Equal(t, "Sam Smith", s.Members[0].Name)

	s.UpdateMember(m.ID, "email", "sam@example.com")
	s.UpdateMember(m.ID, "phone", "+44 20 7946 0000")
	s.UpdateMember(m.ID, "jobTitle", "CFO")

	assert.Equal(t, "sam@example.com", s.Members[0].Email)
	assert.Equal(t, "+44 20 7946 0000", s.Members[0].Phone)
	assert.Equal(t, "CFO", s.Members[0].JobTitle)
}

func TestSetPrimaryContact(t *testing.T) {
	s := NewState()
	s.SyncRegistrantMember()
	extra := s.AddMember()

	s.SetPrimaryContact(extra.ID)

	assert.Equal(t, extra.ID, s.PrimaryContact().ID)
	for _, m := range s.Members {
		if m.ID != extra.ID {
			assert.False(t, m.IsPrimaryContact)
		}
	}

	t.Run("unknown id leaves selection alone", func(t *testing.T) {
		s.SetPrimaryContact("nope")
		assert.Equal(t, extra.ID, s.PrimaryContact().ID)
	})
}

func TestSyncRegistrantMember(t *testing.T) {
	t.Run("creates the registrant entry as primary", func(t *testing.T) {
		s := NewState()
		s.FirstName = "Jane"
		s.Surname = "Doe"
		s.Email = "jane@example.com"

		s.SyncRegistrantMember()

		assert.Len(t, s.Members, 1)
		m := s.Members[0]
		assert.Equal(t, RegistrantID, m.ID)
		assert.Equal(t, "Jane Doe", m.Name)
		assert.Equal(t, "jane@example.com", m.Email)
		assert.True(t, m.IsPrimaryContact)
	})

	t.Run("resync updates identity fields in place", func(t *testing.T) {
		s := NewState()
		s.FirstName = "Jane"
		s.Surname = "Doe"
		s.SyncRegistrantMember()
		s.UpdateMember(RegistrantID, "jobTitle", "CEO")

		s.Surname = "Doe-Smith"
		s.Email = "jane.ds@example.com"
		s.SyncRegistrantMember()

		assert.Len(t, s.Members, 1)
		m := s.Members[0]
		assert.Equal(t, "Jane Doe-Smith", m.Name)
		assert.Equal(t, "jane.ds@example.com", m.Email)
		assert.Equal(t, "CEO", m.JobTitle)
	})
}

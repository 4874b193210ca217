package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRolePolicies(t *testing.T) {
	cases := []struct {
		role     Role
		duration int
		limit    int
		papers   bool
	}{
		{RoleStudent, 15, 2, false},
		{RoleResearcher, 30, 5, true},
		{RoleFaculty, 20, 5, true},
		{RoleGuest, 7, 0, false},
		{RoleUnknown, 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			require.Equal(t, tc.duration, tc.role.BorrowDuration())
			require.Equal(t, tc.limit, tc.role.BorrowLimit())
			require.Equal(t, tc.papers, tc.role.CanAccessPapers())
		})
	}
}

func TestParseRole(t *testing.T) {
	require.Equal(t, RoleFaculty, ParseRole("Faculty"))
	require.Equal(t, RoleUnknown, ParseRole("faculty"), "role names are case sensitive")
	require.Equal(t, RoleUnknown, ParseRole(""))
}

func TestItemKind(t *testing.T) {
	k, ok := ParseItemKind("printedbook")
	require.True(t, ok)
	require.True(t, k.IsBook())
	require.True(t, k.Finable())

	_, ok = ParseItemKind("vinyl")
	require.False(t, ok)

	require.True(t, KindEBook.IsBook())
	require.False(t, KindEBook.Finable())
	require.False(t, KindResearchPaper.IsBook())
	require.True(t, KindResearchPaper.Finable())
}

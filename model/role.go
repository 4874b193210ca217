// model/role.go
package model

type Role string

const (
	RoleStudent    Role = "Student"
	RoleResearcher Role = "Researcher"
	RoleFaculty    Role = "Faculty"
	RoleGuest      Role = "Guest"
	RoleUnknown    Role = "Unknown"
)

type rolePolicy struct {
	DurationDays int
	BorrowLimit  int
}

// Role behavior is just these two numbers; unknown roles cannot borrow.
var rolePolicies = map[Role]rolePolicy{
	RoleStudent:    {DurationDays: 15, BorrowLimit: 2},
	RoleResearcher: {DurationDays: 30, BorrowLimit: 5},
	RoleFaculty:    {DurationDays: 20, BorrowLimit: 5},
	RoleGuest:      {DurationDays: 7, BorrowLimit: 0},
}

func ParseRole(s string) Role {
	switch Role(s) {
	case RoleStudent, RoleResearcher, RoleFaculty, RoleGuest:
		return Role(s)
	}
	return RoleUnknown
}

func (r Role) BorrowDuration() int { return rolePolicies[r].DurationDays }

func (r Role) BorrowLimit() int { return rolePolicies[r].BorrowLimit }

func (r Role) CanAccessPapers() bool { return r == RoleFaculty || r == RoleResearcher }

package auth

// roleRank orders roles for "at least as privileged as" checks. Unknown
// roles rank below every valid role.
var roleRank = map[UserRole]int{
	RoleStudent:     1,
	RoleTeacher:     2,
	RoleSchoolAdmin: 3,
	RoleAdmin:       4,
	RoleStateAdmin:  5,
	RoleSystemAdmin: 6,
}

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// IsAtLeast checks if this role meets the minimum required level. The
// bound is inclusive: admin IsAtLeast admin.
func (r UserRole) IsAtLeast(min UserRole) bool {
	return roleRank[r] >= roleRank[min] && roleRank[min] > 0
}

// The equality predicates below check for an exact role, not a
// hierarchy level: IsTeacher is false for an admin. Use IsAtLeast for
// privilege checks.

// IsAdmin reports whether the role is exactly admin.
func (r UserRole) IsAdmin() bool { return r == RoleAdmin }

// IsSchoolAdmin reports whether the role is exactly school_admin.
func (r UserRole) IsSchoolAdmin() bool { return r == RoleSchoolAdmin }

// IsTeacher reports whether the role is exactly teacher.
func (r UserRole) IsTeacher() bool { return r == RoleTeacher }

// IsStudent reports whether the role is exactly student.
func (r UserRole) IsStudent() bool { return r == RoleStudent }

package auth

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

var AllRoles = []Role{RoleUser, RoleAdmin}

func (r Role) IsValid() bool {
	for _, v := range AllRoles {
		if r == v {
			return true
		}
	}
	return false
}

type Permission string

const (
	PermQuizTake       Permission = "quiz:take"
	PermQuizManageOwn  Permission = "quiz:manage:own"
	PermQuizManageAny  Permission = "quiz:manage:any"
	PermQuizPreview    Permission = "quiz:preview"
	PermCategoryManage Permission = "category:manage"
)

var rolePermissions = map[Role][]Permission{
	RoleUser: {
		PermQuizTake,
		PermQuizManageOwn,
	},
	RoleAdmin: {
		PermQuizTake,
		PermQuizManageOwn,
		PermQuizManageAny,
		PermQuizPreview,
		PermCategoryManage,
	},
}

func Can(role string, perm Permission) bool {
	for _, p := range rolePermissions[Role(role)] {
		if p == perm {
			return true
		}
	}
	return false
}

// CanManageResource is the ownership fallback: roles with the "any"
// permission pass outright, everyone else only on resources they own.
func CanManageResource(role string, anyPerm, ownPerm Permission, isOwner bool) bool {
	if Can(role, anyPerm) {
		return true
	}
	return isOwner && Can(role, ownPerm)
}

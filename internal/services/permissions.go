package services

import "github.com/yungbote/studybuddy-backend/internal/domain/user"

type Permission string

const (
	PermUsersManage      Permission = "users:manage"
	PermCurriculumManage Permission = "curriculum:manage"
	PermFeedbackManage   Permission = "feedback:manage"
	PermAnalyticsRead    Permission = "analytics:read"
)

var rolePermissions = map[string]map[Permission]bool{
	user.RoleAdmin: {
		PermUsersManage:      true,
		PermCurriculumManage: true,
		PermFeedbackManage:   true,
		PermAnalyticsRead:    true,
	},
	user.RoleStudent: {},
}

// RoleHas reports whether role grants perm. Unknown roles grant nothing.
func RoleHas(role string, perm Permission) bool {
	return rolePermissions[role][perm]
}

func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

package authz

const (
	RoleSales      = 10
	RoleOperations = 20
	RoleAudit      = 30
	RoleManagement = 40
	RoleAdmin      = 50
)

// TaskRoles may see the task endpoints at all; audit is further limited to reads.
var TaskRoles = []int{RoleSales, RoleOperations, RoleAudit, RoleManagement, RoleAdmin}

func IsReadOnly(roleID int) bool {
	return roleID == RoleAudit
}

package entity

// Role is resolved from group membership once per request.
type Role string

const (
	RoleCustomer     Role = "customer"
	RoleDeliveryCrew Role = "delivery_crew"
	RoleManager      Role = "manager"
)

// RoleFromGroups picks the strongest role among the given group names.
// No membership means Customer.
func RoleFromGroups(names []string) Role {
	role := RoleCustomer
	for _, n := range names {
		switch n {
		case GroupManager:
			return RoleManager
		case GroupDeliveryCrew:
			role = RoleDeliveryCrew
		}
	}
	return role
}

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleDeliveryCrew, RoleManager:
		return true
	}
	return false
}

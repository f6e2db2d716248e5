package rbac

// Role names issued by the pharmacy backend.
const (
	SuperAdmin = "Super Admin"
	Admin      = "Admin"
	Pharmacist = "Pharmacist"
	Inventory  = "Inventory"
	Cashier    = "Cashier"
)

// AllRoles lists every role, highest privilege first.
var AllRoles = []string{SuperAdmin, Admin, Pharmacist, Inventory, Cashier}

// Role sets shared by routes and navigation. Super Admin is listed
// explicitly; there is no implicit bypass.
var (
	Everyone      = AllRoles
	CatalogRead   = []string{SuperAdmin, Admin, Pharmacist, Inventory, Cashier}
	CatalogWrite  = []string{SuperAdmin, Admin, Pharmacist, Inventory}
	StockKeepers  = []string{SuperAdmin, Admin, Pharmacist, Inventory}
	Sellers       = []string{SuperAdmin, Admin, Pharmacist, Cashier}
	SaleDeleters  = []string{SuperAdmin, Admin}
	ReportViewers = []string{SuperAdmin, Admin, Pharmacist}
	UserAdmins    = []string{SuperAdmin}
)

// Allowed reports whether role is a member of roles.
func Allowed(role string, roles []string) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}

package rbac

import "strings"

// Policy maps console sections to the roles allowed to open them.
type Policy struct {
	sections map[string][]string
}

// Sections of the console.
const (
	SectionDashboard = "/dashboard"
	SectionMedicines = "/medicines"
	SectionSuppliers = "/suppliers"
	SectionStock     = "/stock"
	SectionPurchases = "/purchases"
	SectionSales     = "/sales"
	SectionReports   = "/reports"
	SectionUsers     = "/users"
	SectionSettings  = "/settings"
)

// DefaultPolicy mirrors the role checks enforced by the backend.
func DefaultPolicy() Policy {
	return Policy{sections: map[string][]string{
		SectionDashboard: Everyone,
		SectionMedicines: CatalogRead,
		SectionSuppliers: CatalogRead,
		SectionStock:     StockKeepers,
		SectionPurchases: StockKeepers,
		SectionSales:     Sellers,
		SectionReports:   ReportViewers,
		SectionUsers:     UserAdmins,
		SectionSettings:  Everyone,
	}}
}

// Roles returns the roles allowed into section.
func (p Policy) Roles(section string) []string {
	return p.sections[section]
}

// CanOpen reports whether role may open the section owning path. Paths
// outside every section are open to everyone.
func (p Policy) CanOpen(role, path string) bool {
	section := sectionOf(path)
	roles, ok := p.sections[section]
	if !ok {
		return true
	}
	return Allowed(role, roles)
}

func sectionOf(path string) string {
	path = "/" + strings.TrimLeft(path, "/")
	if idx := strings.IndexByte(path[1:], '/'); idx >= 0 {
		return path[:idx+1]
	}
	return path
}

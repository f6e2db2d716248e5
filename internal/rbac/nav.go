package rbac

// NavItem is one entry of the sidebar.
type NavItem struct {
	Label  string
	Path   string
	Active bool
}

var navOrder = []NavItem{
	{Label: "Dashboard", Path: SectionDashboard},
	{Label: "Medicines", Path: SectionMedicines},
	{Label: "Suppliers", Path: SectionSuppliers},
	{Label: "Stock", Path: SectionStock},
	{Label: "Purchases", Path: SectionPurchases},
	{Label: "Sales", Path: SectionSales},
	{Label: "Reports", Path: SectionReports},
	{Label: "Users", Path: SectionUsers},
	{Label: "Settings", Path: SectionSettings},
}

// Navigation returns the sidebar entries role may open, marking the one
// that owns currentPath.
func (p Policy) Navigation(role, currentPath string) []NavItem {
	current := sectionOf(currentPath)
	items := make([]NavItem, 0, len(navOrder))
	for _, item := range navOrder {
		if !Allowed(role, p.sections[item.Path]) {
			continue
		}
		item.Active = item.Path == current
		items = append(items, item)
	}
	return items
}

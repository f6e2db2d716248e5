package backend

import (
	"strconv"
	"strings"
	"time"
)

// Medicine is an inventory item.
type Medicine struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	GenericName *string `json:"generic_name"`
	BatchNumber string  `json:"batch_number"`
	ExpiryDate  string  `json:"expiry_date"`
	UnitPrice   float64 `json:"unit_price"`
	StockQty    int     `json:"stock_qty"`
	SupplierID  *int64  `json:"supplier_id"`
}

// Field implements table.Row.
func (m Medicine) Field(name string) any {
	switch name {
	case "id":
		return m.ID
	case "name":
		return m.Name
	case "generic_name":
		return optString(m.GenericName)
	case "batch_number":
		return m.BatchNumber
	case "expiry_date":
		return m.ExpiryDate
	case "unit_price":
		return m.UnitPrice
	case "stock_qty":
		return m.StockQty
	case "supplier_id":
		return optInt(m.SupplierID)
	}
	return nil
}

// Expiry parses ExpiryDate.
func (m Medicine) Expiry() (time.Time, bool) {
	return ParseTime(m.ExpiryDate)
}

// MedicineInput is the create and update payload for medicines.
type MedicineInput struct {
	Name        string  `json:"name"`
	GenericName *string `json:"generic_name"`
	BatchNumber string  `json:"batch_number"`
	ExpiryDate  string  `json:"expiry_date"`
	UnitPrice   float64 `json:"unit_price"`
	StockQty    int     `json:"stock_qty"`
	SupplierID  *int64  `json:"supplier_id"`
}

// Supplier is a medicine vendor.
type Supplier struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// Field implements table.Row.
func (s Supplier) Field(name string) any {
	switch name {
	case "id":
		return s.ID
	case "name":
		return s.Name
	case "phone":
		return optString(s.Phone)
	case "address":
		return optString(s.Address)
	}
	return nil
}

// SupplierInput is the create and update payload for suppliers.
type SupplierInput struct {
	Name    string  `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// SaleItem is one line of a sale.
type SaleItem struct {
	ID         int64   `json:"id"`
	MedicineID int64   `json:"medicine_id"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	LineTotal  float64 `json:"line_total"`
}

// Sale is a completed checkout.
type Sale struct {
	ID             int64      `json:"id"`
	SaleCode       *string    `json:"sale_code"`
	SoldAt         string     `json:"sold_at"`
	CustomerName   *string    `json:"customer_name"`
	UserID         *int64     `json:"user_id"`
	SellerName     *string    `json:"seller_name"`
	SellerUsername *string    `json:"seller_username"`
	TotalAmount    float64    `json:"total_amount"`
	Items          []SaleItem `json:"items"`
}

// Field implements table.Row.
func (s Sale) Field(name string) any {
	switch name {
	case "id":
		return s.ID
	case "sale_code":
		return optString(s.SaleCode)
	case "sold_at":
		return s.SoldAt
	case "customer_name":
		return optString(s.CustomerName)
	case "user_id":
		return optInt(s.UserID)
	case "seller_name":
		return optString(s.SellerName)
	case "seller_username":
		return optString(s.SellerUsername)
	case "total_amount":
		return s.TotalAmount
	case "item_count":
		return len(s.Items)
	}
	return nil
}

// Code is the receipt identifier: the sale code, or "#<id>" without one.
func (s Sale) Code() string {
	if s.SaleCode != nil && strings.TrimSpace(*s.SaleCode) != "" {
		return *s.SaleCode
	}
	return "#" + strconv.FormatInt(s.ID, 10)
}

// Seller names who rang up the sale.
func (s Sale) Seller() string {
	for _, candidate := range []*string{s.SellerName, s.SellerUsername} {
		if candidate != nil && strings.TrimSpace(*candidate) != "" {
			return *candidate
		}
	}
	return "Unknown"
}

// Customer names the buyer.
func (s Sale) Customer() string {
	if s.CustomerName != nil && strings.TrimSpace(*s.CustomerName) != "" {
		return *s.CustomerName
	}
	return "Walk-in customer"
}

// Quantity sums item quantities.
func (s Sale) Quantity() int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// SaleItemInput is one requested sale line.
type SaleItemInput struct {
	MedicineID int64 `json:"medicine_id"`
	Quantity   int   `json:"quantity"`
}

// SaleInput creates a sale. Prices are set by the backend.
type SaleInput struct {
	CustomerName *string         `json:"customer_name"`
	Items        []SaleItemInput `json:"items"`
}

// SaleUpdate changes the editable sale fields.
type SaleUpdate struct {
	CustomerName *string `json:"customer_name"`
}

// PurchaseItem is one line of a stock purchase.
type PurchaseItem struct {
	ID         int64   `json:"id"`
	MedicineID int64   `json:"medicine_id"`
	Quantity   int     `json:"quantity"`
	UnitCost   float64 `json:"unit_cost"`
	LineTotal  float64 `json:"line_total"`
}

// Purchase is a stock intake from a supplier.
type Purchase struct {
	ID            int64          `json:"id"`
	PurchasedAt   string         `json:"purchased_at"`
	SupplierID    *int64         `json:"supplier_id"`
	InvoiceNumber *string        `json:"invoice_number"`
	Note          *string        `json:"note"`
	TotalAmount   float64        `json:"total_amount"`
	Items         []PurchaseItem `json:"items"`
}

// Field implements table.Row.
func (p Purchase) Field(name string) any {
	switch name {
	case "id":
		return p.ID
	case "purchased_at":
		return p.PurchasedAt
	case "supplier_id":
		return optInt(p.SupplierID)
	case "invoice_number":
		return optString(p.InvoiceNumber)
	case "note":
		return optString(p.Note)
	case "total_amount":
		return p.TotalAmount
	case "item_count":
		return len(p.Items)
	}
	return nil
}

// PurchaseItemInput is one requested purchase line.
type PurchaseItemInput struct {
	MedicineID int64   `json:"medicine_id"`
	Quantity   int     `json:"quantity"`
	UnitCost   float64 `json:"unit_cost"`
}

// PurchaseInput creates a purchase.
type PurchaseInput struct {
	SupplierID    *int64              `json:"supplier_id"`
	InvoiceNumber *string             `json:"invoice_number"`
	Note          *string             `json:"note"`
	Items         []PurchaseItemInput `json:"items"`
}

// PurchaseUpdate changes the purchase header.
type PurchaseUpdate struct {
	SupplierID    *int64  `json:"supplier_id"`
	InvoiceNumber *string `json:"invoice_number"`
	Note          *string `json:"note"`
}

// User is a console account as reported by the backend.
type User struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Email    *string `json:"email"`
	Role     string  `json:"role"`
	Active   bool    `json:"active"`
}

// Field implements table.Row.
func (u User) Field(name string) any {
	switch name {
	case "id":
		return u.ID
	case "username":
		return u.Username
	case "name":
		return u.Name
	case "email":
		return optString(u.Email)
	case "role":
		return u.Role
	case "active":
		return u.Active
	case "status":
		if u.Active {
			return "Active"
		}
		return "Inactive"
	}
	return nil
}

// UserInput creates a user. Username defaults to the email and password to
// the backend default when omitted.
type UserInput struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

// UserUpdate changes a user's profile and role.
type UserUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PasswordChange is the change-password payload.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// DashboardStats summarises the pharmacy for the landing page.
type DashboardStats struct {
	MedicineCount int     `json:"medicine_count"`
	SupplierCount int     `json:"supplier_count"`
	TotalSales    float64 `json:"total_sales"`
	LowStockCount int     `json:"low_stock_count"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTime reads the timestamp and date formats the backend emits. Values
// without a zone are taken as local time.
func ParseTime(value string) (time.Time, bool) {
	return ParseTimeIn(value, time.Local)
}

// ParseTimeIn is ParseTime with values without a zone taken in loc.
func ParseTimeIn(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func optString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func optInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

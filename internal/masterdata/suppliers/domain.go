package suppliers

// Supplier is one vendor record. Orders reference suppliers by id only; the
// record is never embedded in a document.
type Supplier struct {
	SupplierID  string `validate:"required"`
	Name        string `validate:"required"`
	ContactInfo string
}

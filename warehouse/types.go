// Package warehouse holds the destination-side records the examples and
// integration tests map onto, including the collection shapes the engine
// populates in place or through a registered constructor.
package warehouse

// ProductRecord is the warehouse view of a store product.
type ProductRecord struct {
	SKU        string
	Name       string
	PriceCents int64
}

// CustomerRecord flattens a customer and their address.
type CustomerRecord struct {
	Email    string
	FullName string
	City     string
}

// ItemRecord is one order line.
type ItemRecord struct {
	Name      string
	Quantity  int
	UnitPrice int64
}

// OrderRecord is the warehouse view of an order.
type OrderRecord struct {
	ID       int64
	Status   string
	Customer CustomerRecord
	Items    []ItemRecord
}

// CategoryRecord mirrors the self-referential store category.
type CategoryRecord struct {
	Name   string
	Parent *CategoryRecord
}

// SKUList is an Add/Clear collection destination; the engine clears and
// refills it in place unless it reports itself read-only.
type SKUList struct {
	skus   []string
	sealed bool
}

// NewSKUList creates a list prefilled with the given SKUs.
func NewSKUList(skus ...string) *SKUList {
	return &SKUList{skus: skus}
}

// Add appends one SKU.
func (l *SKUList) Add(sku string) { l.skus = append(l.skus, sku) }

// Clear drops all SKUs, keeping capacity.
func (l *SKUList) Clear() { l.skus = l.skus[:0] }

// SKUs returns the current contents.
func (l *SKUList) SKUs() []string { return l.skus }

// Seal marks the list read-only for in-place population.
func (l *SKUList) Seal() { l.sealed = true }

// ReadOnly reports whether the list refuses in-place population.
func (l *SKUList) ReadOnly() bool { return l.sealed }

// SealedSKUs is the immutable SKU collection; it is only ever produced
// through NewSealedSKUs.
type SealedSKUs struct {
	skus []string
}

// NewSealedSKUs freezes a mutable list.
func NewSealedSKUs(l *SKUList) SealedSKUs {
	return SealedSKUs{skus: append([]string(nil), l.SKUs()...)}
}

// SKUs returns a copy of the sealed contents.
func (s SealedSKUs) SKUs() []string {
	return append([]string(nil), s.skus...)
}

// ShipmentRecord is the warehouse view of a shipment; Manifest is the
// frozen copy of the SKU set.
type ShipmentRecord struct {
	Code     string
	SKUs     *SKUList
	Manifest SealedSKUs
}

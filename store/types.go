// Package store holds the source-side domain types the examples and
// integration tests map from.
package store

// Product is an individual item available for sale. Price is kept in cents
// to avoid floating-point errors.
type Product struct {
	ID         int64
	SKU        string
	Name       string
	PriceCents int64
	Inventory  int
}

// Address is a customer's physical address.
type Address struct {
	Street string
	City   string
}

// Customer is the user placing orders.
type Customer struct {
	ID       int64
	Email    string
	FullName string
	Address  *Address
	IsActive bool
}

// OrderStatus is a custom type for type-safe status handling.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Order is a transaction made by a customer.
type Order struct {
	ID         int64
	Customer   *Customer
	Status     OrderStatus
	TotalCents int64
	Items      []OrderItem
}

// OrderItem is a product line within an order, snapshotting the price at
// the time of purchase.
type OrderItem struct {
	ProductID int64
	Name      string
	Quantity  int
	UnitPrice int64
}

// Shipment is a batch of stock leaving the store.
type Shipment struct {
	Code string
	SKUs []string
}

// Category is a self-referential taxonomy node.
type Category struct {
	Name   string
	Parent *Category
}

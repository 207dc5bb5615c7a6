package models

// ProductSeller describes the supplier-side seller of a product.
type ProductSeller struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Product is the canonical storefront product shape. Prices are integer
// amounts in the display currency's minor-free unit (whole naira), already
// converted from the supplier's native currency.
type Product struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Price              int64         `json:"price"`
	Category           string        `json:"category"`
	Image              string        `json:"image"`
	Rating             float64       `json:"rating"`
	Seller             ProductSeller `json:"seller"`
	Stock              int           `json:"stock"`
	ShippingTimeInDays int           `json:"shippingTimeInDays"`
}

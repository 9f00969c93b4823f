/*
Package order - the watch box order subdomain.

An Order is a transient value: it is validated and priced here, then handed to
the registry, spreadsheet and notification ports declared in ports.go. Nothing
in this package performs I/O.
*/
package order

import (
	"fmt"
	"strings"
)

// Product one watch variant shipped inside the box
type Product struct {
	ID        string
	Name      string
	ImagePath string
}

const catalogSize = 10

var catalog = buildCatalog()

func buildCatalog() []Product {
	products := make([]Product, 0, catalogSize)
	for i := 1; i <= catalogSize; i++ {
		products = append(products, Product{
			ID:        fmt.Sprintf("model-%d", i),
			Name:      fmt.Sprintf("موديل %d", i),
			ImagePath: fmt.Sprintf("/images/watches/%d.webp", i),
		})
	}
	return products
}

// Catalog returns a copy of the fixed product list in display order.
func Catalog() []Product {
	out := make([]Product, len(catalog))
	copy(out, catalog)
	return out
}

// FindProduct looks up a catalog entry by id.
func FindProduct(id string) (Product, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// ImageURL joins the public asset base with the product image path.
// Unknown ids yield "".
func ImageURL(baseURL, productID string) string {
	p, ok := FindProduct(productID)
	if !ok {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + p.ImagePath
}

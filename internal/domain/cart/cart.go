// Package cart holds the cart aggregate as it is stored in the key-value store
// and served to clients.
package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Cart is a customer's cart. Items keep the order they were stored in.
//
// Fields other than "items" are owned by the mutation endpoints; they are kept
// verbatim in Extra so that a read never drops data it does not understand.
type Cart struct {
	Items []CartItem `json:"items"`

	Extra map[string]json.RawMessage `json:"-"`
}

// CartItem is a single line of a cart.
type CartItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"qty"`

	// ProductInfo is filled at read time from the catalog and never persisted.
	ProductInfo json.RawMessage `json:"productInfo,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Len returns the number of items in the cart
func (c *Cart) Len() int {
	return len(c.Items)
}

// SKUs returns the SKU of every item in item order
func (c *Cart) SKUs() []string {
	skus := make([]string, len(c.Items))
	for i, item := range c.Items {
		skus[i] = item.SKU
	}
	return skus
}

// HasProductInfo reports whether the item was enriched with catalog data
func (i *CartItem) HasProductInfo() bool {
	return len(i.ProductInfo) > 0 && string(i.ProductInfo) != "null"
}

// Decode parses a stored cart document. A JSON null document holds no
// cart and decodes to nil.
func Decode(data []byte) (*Cart, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &c, nil
}

// MarshalJSON writes the known fields over the preserved extra fields.
func (c Cart) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+1)
	for k, v := range c.Extra {
		out[k] = v
	}
	items := c.Items
	if items == nil {
		items = []CartItem{}
	}
	out["items"] = items
	return json.Marshal(out)
}

// UnmarshalJSON reads the known fields and keeps everything else in Extra.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if rawItems, ok := raw["items"]; ok {
		if err := json.Unmarshal(rawItems, &c.Items); err != nil {
			return fmt.Errorf("items: %w", err)
		}
		delete(raw, "items")
	}
	if len(raw) > 0 {
		c.Extra = raw
	}
	return nil
}

// MarshalJSON writes the known fields over the preserved extra fields.
func (i CartItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Extra)+3)
	for k, v := range i.Extra {
		out[k] = v
	}
	out["sku"] = i.SKU
	out["qty"] = i.Quantity
	if i.HasProductInfo() {
		out["productInfo"] = i.ProductInfo
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the known fields and keeps everything else in Extra.
// A stored productInfo is discarded since enrichment happens on every read.
func (i *CartItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["sku"]; ok {
		if err := json.Unmarshal(v, &i.SKU); err != nil {
			return fmt.Errorf("sku: %w", err)
		}
	}
	if v, ok := raw["qty"]; ok {
		if err := json.Unmarshal(v, &i.Quantity); err != nil {
			return fmt.Errorf("qty: %w", err)
		}
	}
	delete(raw, "sku")
	delete(raw, "qty")
	delete(raw, "productInfo")
	if len(raw) > 0 {
		i.Extra = raw
	}
	return nil
}

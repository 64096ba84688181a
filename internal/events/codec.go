// Package events carries order notifications over Kafka as Avro records.
package events

import (
	"fmt"
	"time"

	"github.com/linkedin/goavro/v2"

	"storefront-api/internal/domain"
)

const orderCreatedSchema = `{
  "type": "record",
  "name": "OrderCreated",
  "namespace": "storefront.orders",
  "fields": [
    {"name": "orderId", "type": "string"},
    {"name": "orderNumber", "type": "string"},
    {"name": "customerId", "type": "string"},
    {"name": "customerName", "type": "string"},
    {"name": "customerEmail", "type": "string"},
    {"name": "customerPhone", "type": ["null", "string"], "default": null},
    {"name": "totalAmount", "type": "string"},
    {"name": "createdAtMillis", "type": "long"},
    {"name": "items", "type": {"type": "array", "items": {
      "type": "record",
      "name": "OrderCreatedItem",
      "fields": [
        {"name": "productId", "type": "string"},
        {"name": "variantId", "type": "string"},
        {"name": "productName", "type": "string"},
        {"name": "variantName", "type": "string"},
        {"name": "price", "type": "string"},
        {"name": "quantity", "type": "int"}
      ]
    }}}
  ]
}`

// OrderCreated is the event payload. Amounts travel as decimal strings.
type OrderCreated struct {
	OrderID       string
	OrderNumber   string
	CustomerID    string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	TotalAmount   string
	CreatedAt     time.Time
	Items         []OrderCreatedItem
}

type OrderCreatedItem struct {
	ProductID   string
	VariantID   string
	ProductName string
	VariantName string
	Price       string
	Quantity    int
}

// FromOrder builds the event for a committed order.
func FromOrder(o *domain.Order) OrderCreated {
	ev := OrderCreated{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
		TotalAmount:   o.TotalAmount.StringFixed(2),
		CreatedAt:     o.CreatedAt,
		Items:         make([]OrderCreatedItem, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderCreatedItem{
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			ProductName: it.ProductName,
			VariantName: it.VariantName,
			Price:       it.Price.StringFixed(2),
			Quantity:    it.Quantity,
		})
	}
	return ev
}

// Codec converts OrderCreated to and from Avro binary. goavro codecs are
// safe for concurrent use.
type Codec struct {
	codec *goavro.Codec
}

func NewCodec() (*Codec, error) {
	c, err := goavro.NewCodec(orderCreatedSchema)
	if err != nil {
		return nil, fmt.Errorf("create avro codec: %w", err)
	}
	return &Codec{codec: c}, nil
}

func (c *Codec) Encode(ev OrderCreated) ([]byte, error) {
	items := make([]any, 0, len(ev.Items))
	for _, it := range ev.Items {
		items = append(items, map[string]any{
			"productId":   it.ProductID,
			"variantId":   it.VariantID,
			"productName": it.ProductName,
			"variantName": it.VariantName,
			"price":       it.Price,
			"quantity":    int32(it.Quantity),
		})
	}
	var phone any
	if ev.CustomerPhone != "" {
		phone = goavro.Union("string", ev.CustomerPhone)
	}
	native := map[string]any{
		"orderId":         ev.OrderID,
		"orderNumber":     ev.OrderNumber,
		"customerId":      ev.CustomerID,
		"customerName":    ev.CustomerName,
		"customerEmail":   ev.CustomerEmail,
		"customerPhone":   phone,
		"totalAmount":     ev.TotalAmount,
		"createdAtMillis": ev.CreatedAt.UnixMilli(),
		"items":           items,
	}
	out, err := c.codec.BinaryFromNative(nil, native)
	if err != nil {
		return nil, fmt.Errorf("encode order created: %w", err)
	}
	return out, nil
}

func (c *Codec) Decode(b []byte) (OrderCreated, error) {
	native, _, err := c.codec.NativeFromBinary(b)
	if err != nil {
		return OrderCreated{}, fmt.Errorf("decode order created: %w", err)
	}
	rec, ok := native.(map[string]any)
	if !ok {
		return OrderCreated{}, fmt.Errorf("decode order created: unexpected %T", native)
	}

	ev := OrderCreated{
		OrderID:       str(rec["orderId"]),
		OrderNumber:   str(rec["orderNumber"]),
		CustomerID:    str(rec["customerId"]),
		CustomerName:  str(rec["customerName"]),
		CustomerEmail: str(rec["customerEmail"]),
		TotalAmount:   str(rec["totalAmount"]),
	}
	if u, ok := rec["customerPhone"].(map[string]any); ok {
		ev.CustomerPhone = str(u["string"])
	}
	if ms, ok := rec["createdAtMillis"].(int64); ok {
		ev.CreatedAt = time.UnixMilli(ms).UTC()
	}
	raw, _ := rec["items"].([]any)
	for _, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		qty, _ := m["quantity"].(int32)
		ev.Items = append(ev.Items, OrderCreatedItem{
			ProductID:   str(m["productId"]),
			VariantID:   str(m["variantId"]),
			ProductName: str(m["productName"]),
			VariantName: str(m["variantName"]),
			Price:       str(m["price"]),
			Quantity:    int(qty),
		})
	}
	return ev, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

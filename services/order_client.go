package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Kitchen order statuses as the Order service reports them.
const (
	OrderPending   = "PENDING"
	OrderInKitchen = "IN_KITCHEN"
	OrderReady     = "READY"
	OrderServed    = "SERVED"
	OrderCancelled = "CANCELLED"
)

// OrderItem is one line of a kitchen order.
type OrderItem struct {
	Name                string  `json:"name"`
	Quantity            int     `json:"quantity"`
	UnitPrice           float64 `json:"unit_price"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`
}

// Order is the Order service's view of a kitchen order. TableNumber may be
// empty for preorders placed before a table was assigned; the reservation id
// is the fallback link.
type Order struct {
	ID            uint        `json:"id"`
	ReservationID uint        `json:"reservation_id"`
	TableNumber   string      `json:"table_number"`
	Status        string      `json:"status"`
	TotalPrice    float64     `json:"total_price"`
	Items         []OrderItem `json:"items"`
}

// CreateOrderRequest is the payload for placing a new kitchen order.
type CreateOrderRequest struct {
	TableID       uint        `json:"table_id"`
	ReservationID uint        `json:"reservation_id"`
	Status        string      `json:"status"`
	TotalPrice    float64     `json:"total_price"`
	Items         []OrderItem `json:"items"`
}

// OrderClient is the narrow interface this service consumes from the
// external kitchen Order service.
type OrderClient interface {
	// ActiveOrders lists orders not yet served or cancelled.
	ActiveOrders(ctx context.Context) ([]Order, error)
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
	MarkServed(ctx context.Context, orderID uint) error
}

// HTTPOrderClient talks to the Order service over its JSON API.
type HTTPOrderClient struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPOrderClient(baseURL string) *HTTPOrderClient {
	return &HTTPOrderClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *HTTPOrderClient) ActiveOrders(ctx context.Context) ([]Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/orders/waiter", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order service returned status %d", resp.StatusCode)
	}

	var orders []Order
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *HTTPOrderClient) CreateOrder(ctx context.Context, reqBody CreateOrderRequest) (*Order, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("order service returned status %d", resp.StatusCode)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *HTTPOrderClient) MarkServed(ctx context.Context, orderID uint) error {
	url := fmt.Sprintf("%s/orders/%d/served", c.BaseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("order service returned status %d", resp.StatusCode)
	}
	return nil
}

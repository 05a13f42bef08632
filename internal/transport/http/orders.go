package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/app"
	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/domain"
)

// OrderCreator is the minimal interface needed to create a POS order.
type OrderCreator interface {
	CreateOrder(ctx context.Context, in app.CreateOrderInput) (domain.Order, error)
}

// HandleCreateOrder returns an HTTP handler for POS order creation. Not
// idempotent by itself: callers must not blindly retry a failed request.
func HandleCreateOrder(svc OrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		order, err := svc.CreateOrder(r.Context(), app.CreateOrderInput{
			Items:    req.items(),
			Channel:  domain.Channel(req.Channel),
			TableID:  req.TableID,
			ClientID: req.ClientID,
			Paid:     req.Paid,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(newOrderResponse(order))
	}
}

// Note: item prices are deliberately absent from the request schema. Pricing
// is always recomputed from the catalog on the server.
type createOrderRequest struct {
	Items    []orderItemRequest `json:"items"`
	Channel  string             `json:"channel"`
	TableID  string             `json:"table_id,omitempty"`
	ClientID string             `json:"client_id,omitempty"`
	Paid     bool               `json:"paid,omitempty"`
}

type orderItemRequest struct {
	ProductID   string   `json:"product_id"`
	Quantity    int      `json:"quantity"`
	ModifierIDs []string `json:"modifier_ids,omitempty"`
}

func (r createOrderRequest) items() []app.OrderItemInput {
	items := make([]app.OrderItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, app.OrderItemInput{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			ModifierIDs: it.ModifierIDs,
		})
	}
	return items
}

type orderResponse struct {
	TechnicalID    string    `json:"technical_id"`
	SequenceNumber int       `json:"sequence_number"`
	BusinessDate   string    `json:"business_date"`
	Status         string    `json:"status"`
	PaymentStatus  string    `json:"payment_status"`
	Subtotal       string    `json:"subtotal"`
	Total          string    `json:"total"`
	CreatedAt      time.Time `json:"created_at"`
}

func newOrderResponse(order domain.Order) orderResponse {
	return orderResponse{
		TechnicalID:    order.TechnicalID,
		SequenceNumber: order.SequenceNumber,
		BusinessDate:   order.BusinessDate.Format("2006-01-02"),
		Status:         string(order.Status),
		PaymentStatus:  string(order.PaymentStatus),
		Subtotal:       order.Subtotal.StringFixed(2),
		Total:          order.Total.StringFixed(2),
		CreatedAt:      order.CreatedAt,
	}
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/app"
)

// WebhookProcessor is the minimal interface needed to ingest a delivery webhook.
type WebhookProcessor interface {
	ProcessDeliveryWebhook(ctx context.Context, in app.DeliveryWebhookInput) (app.DeliveryWebhookResult, error)
}

// HandleDeliveryWebhook returns an idempotent HTTP handler for marketplace
// order webhooks. Redelivery of the same external order id answers 200 with
// the already-persisted order.
func HandleDeliveryWebhook(svc WebhookProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		platform, ok := parseWebhookPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		var req deliveryWebhookRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.ProcessDeliveryWebhook(r.Context(), app.DeliveryWebhookInput{
			Platform:        platform,
			ExternalOrderID: req.ExternalOrderID,
			Items:           req.items(),
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := webhookResponse{
			TechnicalID:    res.Order.TechnicalID,
			SequenceNumber: res.Order.SequenceNumber,
			ExternalID:     res.Order.ExternalID,
			Duplicate:      !res.Created,
		}

		w.Header().Set("Content-Type", "application/json")
		if res.Created {
			w.WriteHeader(http.StatusCreated)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func parseWebhookPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "webhooks" || parts[1] != "delivery" {
		return "", false
	}
	if parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

type deliveryWebhookRequest struct {
	ExternalOrderID string             `json:"external_order_id"`
	Items           []orderItemRequest `json:"items"`
}

func (r deliveryWebhookRequest) items() []app.OrderItemInput {
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

type webhookResponse struct {
	TechnicalID    string `json:"technical_id"`
	SequenceNumber int    `json:"sequence_number"`
	ExternalID     string `json:"external_id"`
	Duplicate      bool   `json:"duplicate"`
}

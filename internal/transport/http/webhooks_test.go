package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/app"
	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/domain"
)

type stubWebhookProcessor struct {
	got app.DeliveryWebhookInput
	res app.DeliveryWebhookResult
	err error
}

func (s *stubWebhookProcessor) ProcessDeliveryWebhook(_ context.Context, in app.DeliveryWebhookInput) (app.DeliveryWebhookResult, error) {
	s.got = in
	if s.err != nil {
		return app.DeliveryWebhookResult{}, s.err
	}
	return s.res, nil
}

func TestHandleDeliveryWebhook(t *testing.T) {
	t.Parallel()

	body := `{
		"external_order_id": "RAPPI-9931",
		"items": [{"product_id": "prod-pizza", "quantity": 1}]
	}`

	deliveredOrder := domain.Order{
		TechnicalID:    "a7dbd0cb-1b95-4a4d-8f0c-77b6f1a9f002",
		SequenceNumber: 7,
		ExternalID:     "RAPPI-9931",
		Platform:       "rappi",
	}

	t.Run("first delivery answers 201", func(t *testing.T) {
		svc := &stubWebhookProcessor{res: app.DeliveryWebhookResult{Order: deliveredOrder, Created: true}}
		req := httptest.NewRequest(http.MethodPost, "/webhooks/delivery/rappi", strings.NewReader(body))
		rec := httptest.NewRecorder()

		HandleDeliveryWebhook(svc)(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp webhookResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response body: %v", err)
		}
		if resp.Duplicate {
			t.Fatalf("expected duplicate=false")
		}
		if resp.ExternalID != "RAPPI-9931" || resp.SequenceNumber != 7 {
			t.Fatalf("unexpected response: %+v", resp)
		}
		if svc.got.Platform != "rappi" {
			t.Fatalf("platform not taken from the path, got %q", svc.got.Platform)
		}
	})

	t.Run("redelivery answers 200 with duplicate flag", func(t *testing.T) {
		svc := &stubWebhookProcessor{res: app.DeliveryWebhookResult{Order: deliveredOrder, Created: false}}
		req := httptest.NewRequest(http.MethodPost, "/webhooks/delivery/rappi", strings.NewReader(body))
		rec := httptest.NewRecorder()

		HandleDeliveryWebhook(svc)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp webhookResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response body: %v", err)
		}
		if !resp.Duplicate {
			t.Fatalf("expected duplicate=true")
		}
		if resp.TechnicalID != deliveredOrder.TechnicalID {
			t.Fatalf("expected the original order back, got %s", resp.TechnicalID)
		}
	})

	t.Run("unknown path shapes answer 404", func(t *testing.T) {
		for _, path := range []string{
			"/webhooks/delivery",
			"/webhooks/delivery/",
			"/webhooks/pickup/rappi",
			"/webhooks/delivery/rappi/extra",
		} {
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
			rec := httptest.NewRecorder()

			HandleDeliveryWebhook(&stubWebhookProcessor{})(rec, req)

			if rec.Code != http.StatusNotFound {
				t.Fatalf("%s: expected 404, got %d", path, rec.Code)
			}
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/webhooks/delivery/rappi", nil)
		rec := httptest.NewRecorder()

		HandleDeliveryWebhook(&stubWebhookProcessor{})(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/delivery/rappi", strings.NewReader("not json"))
		rec := httptest.NewRecorder()

		HandleDeliveryWebhook(&stubWebhookProcessor{})(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, rec, codeInvalidRequestBody)
	})

	t.Run("missing external id answers 400", func(t *testing.T) {
		svc := &stubWebhookProcessor{err: domain.ErrExternalIDEmpty}
		req := httptest.NewRequest(http.MethodPost, "/webhooks/delivery/rappi", strings.NewReader(`{"items":[{"product_id":"p","quantity":1}]}`))
		rec := httptest.NewRecorder()

		HandleDeliveryWebhook(svc)(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, rec, codeExternalIDRequired)
	})
}

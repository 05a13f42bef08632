package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/domain"
)

// FlagLister exposes open reconciliation flags to operators.
type FlagLister interface {
	List(ctx context.Context) ([]domain.ReconciliationFlag, error)
}

// HandleListFlags returns an HTTP handler listing reconciliation flags for
// manual follow-up.
func HandleListFlags(svc FlagLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		flags, err := svc.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		out := make([]flagResponse, 0, len(flags))
		for _, f := range flags {
			out = append(out, flagResponse{
				ID:        f.ID,
				OrderID:   f.OrderID,
				Subsystem: f.Subsystem,
				EntityID:  f.EntityID,
				Detail:    f.Detail,
				CreatedAt: f.CreatedAt,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(out)
	}
}

type flagResponse struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Subsystem string    `json:"subsystem"`
	EntityID  string    `json:"entity_id"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

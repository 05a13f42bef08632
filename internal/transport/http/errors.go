package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/faacuromano/control-gastronomicoV2-sub004/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeNoItems            = "order_has_no_items"
	codeInvalidQuantity    = "invalid_quantity"
	codeInvalidID          = "invalid_id"
	codePlatformRequired   = "platform_required"
	codeExternalIDRequired = "external_order_id_required"
	codeNoOpenShift        = "no_open_shift"
	codeTableNotFound      = "table_not_found"
	codeTableOccupied      = "table_occupied"
	codeProductNotFound    = "product_not_found"
	codeProductInactive    = "product_inactive"
	codeModifierUnknown    = "unknown_modifier"
	codeInsufficientStock  = "insufficient_stock"
	codeGenerationFailed   = "identifier_generation_failed"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps the error taxonomy onto HTTP statuses: validation
// errors are 400, precondition failures 409 (or 404 for missing entities),
// and exhausted or fatal generation failures 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoItems):
		writeError(w, http.StatusBadRequest, codeNoItems, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrPlatformRequired):
		writeError(w, http.StatusBadRequest, codePlatformRequired, err.Error())
	case errors.Is(err, domain.ErrExternalIDEmpty):
		writeError(w, http.StatusBadRequest, codeExternalIDRequired, err.Error())
	case errors.Is(err, domain.ErrNoOpenShift):
		writeError(w, http.StatusConflict, codeNoOpenShift, err.Error())
	case errors.Is(err, domain.ErrTableNotFound):
		writeError(w, http.StatusNotFound, codeTableNotFound, err.Error())
	case errors.Is(err, domain.ErrTableOccupied):
		writeError(w, http.StatusConflict, codeTableOccupied, err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
	case errors.Is(err, domain.ErrProductInactive):
		writeError(w, http.StatusConflict, codeProductInactive, err.Error())
	case errors.Is(err, domain.ErrModifierUnknown):
		writeError(w, http.StatusBadRequest, codeModifierUnknown, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		writeError(w, http.StatusConflict, codeInsufficientStock, err.Error())
	default:
		var genErr *domain.GenerationError
		if errors.As(err, &genErr) {
			writeError(w, http.StatusInternalServerError, codeGenerationFailed, "order number generation failed")
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

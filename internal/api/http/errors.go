package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/betx-platform/internal/catalog"
	"github.com/radieske/betx-platform/internal/escrow"
	"github.com/radieske/betx-platform/internal/ledger"
	"github.com/radieske/betx-platform/internal/slip"
	"github.com/radieske/betx-platform/internal/tipster"
	"github.com/radieske/betx-platform/pkg/currency"
)

var (
	// ErrTipClosed: compra depois do cutoff da tip
	ErrTipClosed  = errors.New("tip is closed for purchases")
	errBadRequest = errors.New("bad request")
)

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

var (
	conflictErrs = []error{
		ledger.ErrInsufficientFunds,
		tipster.ErrInvalidTransition,
		ErrTipClosed,
	}
	notFoundErrs = []error{
		catalog.ErrNotFound,
		escrow.ErrPurchaseNotFound,
		tipster.ErrNotFound,
	}
	badRequestErrs = []error{
		errBadRequest,
		ledger.ErrInvalidAmount,
		currency.ErrUnknown,
		slip.ErrNoSelections,
		slip.ErrInvalidStake,
		slip.ErrInvalidOutcome,
		slip.ErrInvalidMode,
		escrow.ErrMissingTxRef,
		escrow.ErrMissingTipID,
		escrow.ErrInvalidPrice,
		escrow.ErrInvalidRefundPercent,
		tipster.ErrMissingField,
		tipster.ErrTermsNotAccepted,
		tipster.ErrInvalidFee,
	}
)

// statusFor mapeia os erros de domínio para o status HTTP
func statusFor(err error) int {
	switch {
	case isAny(err, conflictErrs):
		return http.StatusConflict
	case isAny(err, notFoundErrs):
		return http.StatusNotFound
	case isAny(err, badRequestErrs):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		a.Log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

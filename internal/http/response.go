package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"famiglia/internal/action"
)

// Views map to HTMX refresh events: a client fragment subscribed to
// "refresh:/expenses" reloads itself when that trigger arrives.
const triggerHeader = "HX-Trigger"

func statusFor(code action.Code) int {
	switch code {
	case action.CodeUnauthorized:
		return http.StatusUnauthorized
	case action.CodeFamilyNotSelected:
		return http.StatusConflict
	case action.CodeInvalidInput:
		return http.StatusUnprocessableEntity
	case action.CodeEntityNotFound:
		return http.StatusNotFound
	case action.CodeNetworkError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeResult serializes an action Result and, on success, emits one refresh
// trigger per view the action invalidated during this request.
func writeResult[T any](w http.ResponseWriter, r *http.Request, res action.Result[T]) {
	status := http.StatusOK
	if !res.Success && res.Error != nil {
		status = statusFor(res.Error.Code)
	}

	if res.Success {
		if vr, ok := r.Context().Value(viewsKey).(*viewRecorder); ok {
			if paths := vr.snapshot(); len(paths) > 0 {
				triggers := make([]string, 0, len(paths))
				for _, p := range paths {
					triggers = append(triggers, "refresh:"+p)
				}
				w.Header().Set(triggerHeader, strings.Join(triggers, ", "))
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		logEncodeFailure(r, err)
	}
}

// redirectOnFailure sends page-level requests back to sign-in instead of
// returning a JSON error. Only UNAUTHORIZED and NETWORK_ERROR redirect; other
// failures render as JSON like any API call.
func redirectOnFailure[T any](w http.ResponseWriter, r *http.Request, res action.Result[T]) bool {
	if res.Success || res.Error == nil {
		return false
	}
	switch res.Error.Code {
	case action.CodeUnauthorized:
		http.Redirect(w, r, "/auth/signin?reason=unauthorized", http.StatusSeeOther)
		return true
	case action.CodeNetworkError:
		http.Redirect(w, r, "/auth/signin?reason=network", http.StatusSeeOther)
		return true
	}
	return false
}

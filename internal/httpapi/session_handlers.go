package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"bankist.org/internal/auth"
	"bankist.org/internal/obs"
	"bankist.org/internal/presenter"
	"bankist.org/internal/session"
)

// fieldValue accepts a JSON number or string, the way a form input arrives.
type fieldValue string

func (v *fieldValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = fieldValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = fieldValue(n)
	return nil
}

type credentialsRequest struct {
	User string     `json:"user"`
	PIN  fieldValue `json:"pin"`
}

type transferRequest struct {
	To     string     `json:"to"`
	Amount fieldValue `json:"amount"`
}

type loanRequest struct {
	Amount fieldValue `json:"amount"`
}

// triggerResponse is returned by every UI trigger. Rejected triggers are not
// HTTP errors: the page just keeps showing the current view.
type triggerResponse struct {
	Applied bool           `json:"applied"`
	Reason  string         `json:"reason,omitempty"`
	View    presenter.View `json:"view"`
}

func (a *API) View(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.ctrl.View())
}

func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := a.ctrl.Login(r.Context(), strings.TrimSpace(req.User), pinOf(req.PIN))
	a.respondTrigger(w, r, err)
}

func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	a.respondTrigger(w, r, a.ctrl.Logout(r.Context()))
}

func (a *API) Activity(w http.ResponseWriter, r *http.Request) {
	a.respondTrigger(w, r, a.ctrl.RecordActivity(r.Context()))
}

func (a *API) Sort(w http.ResponseWriter, r *http.Request) {
	a.respondTrigger(w, r, a.ctrl.ToggleSort(r.Context()))
}

func (a *API) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := a.ctrl.Transfer(r.Context(), strings.TrimSpace(req.To), amountOf(req.Amount))
	a.respondTrigger(w, r, err)
}

func (a *API) Loan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	a.respondTrigger(w, r, a.ctrl.RequestLoan(r.Context(), amountOf(req.Amount)))
}

func (a *API) CloseAccount(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := a.ctrl.CloseAccount(r.Context(), strings.TrimSpace(req.User), pinOf(req.PIN))
	a.respondTrigger(w, r, err)
}

func (a *API) respondTrigger(w http.ResponseWriter, r *http.Request, err error) {
	resp := triggerResponse{Applied: err == nil}
	if err != nil {
		if !session.IsRejection(err) {
			obs.Error("trigger_failed", map[string]any{
				"path":       r.URL.Path,
				"request_id": RequestIDFromContext(r.Context()),
				"error":      err.Error(),
			})
			respondError(w, r, http.StatusInternalServerError, "internal error")
			return
		}
		resp.Reason = err.Error()
	}
	resp.View = a.ctrl.View()
	writeJSON(w, http.StatusOK, resp)
}

// decodeBody reads a JSON body; an empty body decodes to the zero request.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

// pinOf maps unparseable input to -1, which never matches a stored PIN.
func pinOf(v fieldValue) int {
	pin, err := auth.ParsePIN(strings.TrimSpace(string(v)))
	if err != nil {
		return -1
	}
	return pin
}

// amountOf maps unparseable input to zero, which every trigger rejects.
func amountOf(v fieldValue) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(string(v)))
	if err != nil {
		return decimal.Zero
	}
	return d
}

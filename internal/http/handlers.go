package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"splitter/internal/core"
	"splitter/internal/metrics"
)

type registerTokenRequest struct {
	Token string `json:"token"`
}

type addExpenseRequest struct {
	Description  string   `json:"description"`
	Amount       float64  `json:"amount"`
	AddedBy      string   `json:"added_by"`
	Participants []string `json:"participants"`
}

// handleHome serves the liveness banner on the exact root path.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Expense Splitter Backend is running 🚀",
	})
}

func (s *Server) handleRegisterToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req registerTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, core.ErrEmptyToken.Error())
		return
	}

	created, err := s.store.RegisterToken(r.Context(), core.Token(req.Token))
	if err != nil {
		slog.ErrorContext(r.Context(), "Token registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !created {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "exists",
			"message": "Token already exists",
		})
		return
	}

	metrics.TokensRegistered.Inc()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Token registered",
	})
}

// handleAddExpense persists the expense, then fans a push notification
// out to every registered token. A failed dispatch is embedded in the
// response; only a failed write makes the whole operation fail.
func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req addExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Amounts and participants are deliberately not validated; the API
	// accepts whatever the client submits.
	expense, pushResponse, err := s.expenses.AddExpense(r.Context(),
		req.Description, req.Amount, req.AddedBy, req.Participants)
	if err != nil {
		slog.ErrorContext(r.Context(), "Add expense failed", "error", err, "description", req.Description)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Status       string          `json:"status"`
		Expense      *core.Expense   `json:"expense"`
		PushResponse json.RawMessage `json:"push_response"`
	}{
		Status:       "success",
		Expense:      expense,
		PushResponse: pushResponse,
	})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	expenses, err := s.store.ListExpenses(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List expenses failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}

	writeJSON(w, http.StatusOK, map[string][]core.Expense{"expenses": expenses})
}

func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tokens, err := s.store.ListTokens(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List tokens failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tokens == nil {
		tokens = []core.Token{}
	}

	writeJSON(w, http.StatusOK, map[string][]core.Token{"tokens": tokens})
}

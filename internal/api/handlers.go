package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alphatrack/alphatrack/internal/app/tracker"
	"github.com/alphatrack/alphatrack/internal/domain"
)

// ─── Accounts ───────────────────────────────────────────────────────────────

// accountRequest is the create/update payload. Score fields are pointers so
// a missing field is distinguishable from an explicit zero.
type accountRequest struct {
	Name            string   `json:"name"`
	CurrentScore    *float64 `json:"currentScore"`
	DailyScore      *float64 `json:"dailyScore"`
	RegressionScore *float64 `json:"regressionScore"`
	RegressionDates string   `json:"regressionDates"` // comma-joined MM/DD tags
}

func (r accountRequest) params() tracker.AccountParams {
	return tracker.AccountParams{
		Name:            r.Name,
		CurrentScore:    r.CurrentScore,
		DailyScore:      r.DailyScore,
		RegressionScore: r.RegressionScore,
		RegressionDates: domain.ParseTags(r.RegressionDates),
	}
}

// handleListAccounts returns all accounts sorted by descending score.
// GET /api/accounts
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": s.tracker.ListAccounts(),
	})
}

// handleCreateAccount creates an account.
// POST /api/accounts
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	acc, err := s.tracker.CreateAccount(req.params())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acc)
}

// handleUpdateAccount replaces an account's base parameters.
// PUT /api/accounts/{id}
func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	acc, err := s.tracker.UpdateAccount(chi.URLParam(r, "id"), req.params())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

// handleDeleteAccount deletes an account. Destructive: requires
// ?confirm=true, otherwise 428.
// DELETE /api/accounts/{id}?confirm=true
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	confirm := r.URL.Query().Get("confirm") == "true"
	if err := s.tracker.DeleteAccount(chi.URLParam(r, "id"), confirm); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleHistory returns an account's score events, oldest first.
// GET /api/accounts/{id}/history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	events, err := s.tracker.History(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": events})
}

// ─── Score Actions ──────────────────────────────────────────────────────────

// handleClaim applies the quick 15-point airdrop claim.
// POST /api/accounts/{id}/claim  {"confirm": true}
func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	acc, err := s.tracker.ClaimAirdrop(chi.URLParam(r, "id"), req.Confirm)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

// handleAirdrop applies the detailed airdrop flow.
// POST /api/accounts/{id}/airdrop  {"date": "YYYY-MM-DD", "amount": N}
func (s *Server) handleAirdrop(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date   string  `json:"date"`
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	acc, err := s.tracker.ConfirmAirdrop(chi.URLParam(r, "id"), req.Date, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

// handleAdjust applies a signed custom adjustment.
// POST /api/accounts/{id}/adjust  {"change": N, "reason": "..."}
func (s *Server) handleAdjust(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Change *float64 `json:"change"`
		Reason string   `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Change == nil {
		writeError(w, http.StatusBadRequest, "change is required")
		return
	}
	acc, err := s.tracker.AdjustScore(chi.URLParam(r, "id"), *req.Change, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

// handleResetDate sets or clears an account's own reset date.
// PUT /api/accounts/{id}/reset-date  {"date": "YYYY-MM-DD" | ""}
func (s *Server) handleResetDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.tracker.SetAccountResetDate(chi.URLParam(r, "id"), req.Date); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─── Cycle ──────────────────────────────────────────────────────────────────

// handleCycleStatus reports the cycle dashboard snapshot.
// GET /api/cycle
func (s *Server) handleCycleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.CycleStatus())
}

// handleCycleReset performs the manual "new season" reset.
// POST /api/cycle/reset  {"confirm": true}
func (s *Server) handleCycleReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	cycle, err := s.tracker.ResetCycle(req.Confirm)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"currentCycle": cycle})
}

// handleCycleOverride sets the global reset-days override; zero clears it.
// PUT /api/cycle/override  {"days": N}
func (s *Server) handleCycleOverride(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Days int `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.tracker.SetManualResetDays(req.Days); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.CycleStatus())
}

// ─── Tools ──────────────────────────────────────────────────────────────────

// handleFundScore maps a fund amount to its daily point contribution.
// GET /api/tools/fund-score?amount=N
func (s *Server) handleFundScore(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount must be a number")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"amount": amount,
		"score":  domain.FundScore(amount),
	})
}

// ─── Snapshot ───────────────────────────────────────────────────────────────

// handleExport downloads the full state as a pretty-printed JSON snapshot.
// GET /api/export
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.tracker.Export()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	cycle := s.tracker.CycleStatus().CurrentCycle
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=alphatrack-cycle-%d.json", cycle))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleImport replaces all state with the uploaded snapshot. Destructive:
// requires ?confirm=true.
// POST /api/import?confirm=true
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body")
		return
	}
	confirm := r.URL.Query().Get("confirm") == "true"
	if err := s.tracker.Import(data, confirm); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

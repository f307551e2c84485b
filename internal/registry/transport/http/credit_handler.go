package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bluecarbonmrv/registry/internal/registry/app"
	"github.com/bluecarbonmrv/registry/internal/registry/middleware"
)

// CreditHandler handles HTTP requests for the carbon-credit ledger.
type CreditHandler struct {
	credits  *app.CreditService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCreditHandler creates a new CreditHandler.
func NewCreditHandler(credits *app.CreditService, validate *validator.Validate, logger *slog.Logger) *CreditHandler {
	return &CreditHandler{credits: credits, validate: validate, logger: logger.With("handler", "credits")}
}

// RegisterProtectedRoutes registers the ledger endpoints. Every ledger
// operation requires an authenticated actor.
func (h *CreditHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/credits", h.ListCredits)
	r.Post("/credits/mint", h.MintCredits)
	r.Post("/credits/{creditID}/transfer", h.TransferCredit)
	r.Post("/credits/{creditID}/retire", h.RetireCredit)
}

// ListCredits returns the credit portfolio for a wallet. With no owner
// parameter it defaults to the caller's own wallet.
func (h *CreditHandler) ListCredits(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		owner = actor.Wallet
	}
	credits, err := h.credits.Portfolio(r.Context(), owner)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, APIResponse{Data: credits})
}

func (h *CreditHandler) MintCredits(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	var in app.MintInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	result, err := h.credits.Mint(r.Context(), actor, in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, APIResponse{
		Data:    result,
		Message: fmt.Sprintf("Successfully minted %g carbon credits", in.Amount),
	})
}

func (h *CreditHandler) TransferCredit(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	transaction, err := h.credits.Transfer(r.Context(), actor, chi.URLParam(r, "creditID"), req.To, req.Amount)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, APIResponse{Data: transaction, Message: "Credits transferred successfully"})
}

func (h *CreditHandler) RetireCredit(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	credit, err := h.credits.Retire(r.Context(), actor, chi.URLParam(r, "creditID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, APIResponse{Data: credit, Message: "Credits retired successfully"})
}

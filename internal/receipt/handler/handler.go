package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"receiptmint/internal/ledger"
	"receiptmint/internal/receipt/mirror"
	"receiptmint/internal/receipt/models"
	dErrors "receiptmint/pkg/domain-errors"
	"receiptmint/pkg/platform/httputil"
	"receiptmint/pkg/requestcontext"
)

// Service defines the receipt operations the HTTP layer needs.
type Service interface {
	MintReceipt(ctx context.Context, req models.MintRequest) (*models.MintSummary, error)
	AssociateTokens(ctx context.Context, account string) ([]ledger.TokenID, error)
	ListOwned(ctx context.Context, account string) (*models.OwnedListing, error)
}

// Handler wires receipt endpoints to the receipt service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a receipt handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts receipt endpoints on the router. mintMiddleware wraps only
// the mint route.
func (h *Handler) Register(r chi.Router, mintMiddleware ...func(http.Handler) http.Handler) {
	r.With(mintMiddleware...).Post("/mint-receipt", h.HandleMintReceipt)
	r.Post("/associate-tokens", h.HandleAssociateTokens)
	r.Get("/get-nfts/{accountId}", h.HandleGetNFTs)
}

// HandleMintReceipt handles POST /mint-receipt. Any response after a serial
// was created is a 200, including a failed delivery.
func (h *Handler) HandleMintReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[MintReceiptRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	summary, err := h.service.MintReceipt(ctx, req.ToModel())
	if err != nil {
		h.logger.ErrorContext(ctx, "mint receipt failed",
			"request_id", requestID,
			"merchant", req.Merchant,
			"customer", req.CustomerWallet,
			"error", err,
		)
		writeFailure(w, err, "Failed to mint receipt NFT", nil)
		return
	}

	h.logger.InfoContext(ctx, "receipt minted",
		"request_id", requestID,
		"receipt_nft", summary.ReceiptNFT,
		"customer", req.CustomerWallet,
		"tx_status", summary.TxStatus,
		"test_mode", summary.TestMode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, fromSummary(summary))
}

// HandleAssociateTokens handles POST /associate-tokens.
func (h *Handler) HandleAssociateTokens(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AssociateTokensRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tokens, err := h.service.AssociateTokens(ctx, req.AccountID)
	if err != nil {
		h.logger.ErrorContext(ctx, "associate tokens failed",
			"request_id", requestID,
			"account", req.AccountID,
			"error", err,
		)
		writeFailure(w, err, "Failed to associate tokens", nil)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, AssociateTokensResponse{Status: statusSuccess, Tokens: tokens})
}

// HandleGetNFTs handles GET /get-nfts/{accountId}.
func (h *Handler) HandleGetNFTs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	account := chi.URLParam(r, "accountId")

	listing, err := h.service.ListOwned(ctx, account)
	if err != nil {
		h.logger.ErrorContext(ctx, "list owned receipts failed",
			"request_id", requestID,
			"account", account,
			"error", err,
		)
		var apiError any
		if apiErr, ok := mirror.AsAPIError(err); ok && apiErr.Body != nil {
			apiError = apiErr.Body
		}
		writeFailure(w, err, "Failed to fetch NFTs", apiError)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, fromListing(listing))
}

// writeFailure writes {error, details, apiError}. Validation problems keep
// their 400; everything else is a 500 carrying the underlying message.
func writeFailure(w http.ResponseWriter, err error, message string, apiError any) {
	if dErrors.HasCode(err, dErrors.CodeValidation) || dErrors.HasCode(err, dErrors.CodeBadRequest) {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{
		Error:    message,
		Details:  err.Error(),
		APIError: apiError,
	})
}

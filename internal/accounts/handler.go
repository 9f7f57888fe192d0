package accounts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fintrack/fintrack/internal/platform/httpx"
	"github.com/fintrack/fintrack/internal/shared"
)

// Handler wires HTTP endpoints for account lifecycle flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountPublicRoutes registers the unauthenticated account routes.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Get("/activate", h.activate)
	r.Get("/status", h.status)
}

// MountRoutes registers routes that require an authenticated account.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/profile", h.profile)
}

type registerRequest struct {
	FullName        string `json:"fullName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ProfileImageURL string `json:"profileImageUrl"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.Register(r.Context(), RegisterInput{
		FullName:        req.FullName,
		Email:           req.Email,
		Password:        req.Password,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		h.logger.Warn("register account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account.PublicProfile())
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	ok, err := h.service.Activate(r.Context(), token)
	if err != nil {
		h.logger.Error("activate account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "activation token not found or already used")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "profile activated successfully"})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	active, err := h.service.IsActive(r.Context(), email)
	if err != nil {
		h.logger.Error("account status", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"isActive": active})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	email := r.URL.Query().Get("email")
	if email == "" {
		email = identity.Email
	}
	profile, err := h.service.PublicProfile(r.Context(), email)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

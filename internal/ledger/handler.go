package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/platform/httpx"
	"github.com/fintrack/fintrack/internal/shared"
)

const dateLayout = "2006-01-02"

// Handler wires the expense and income HTTP surfaces over one ledger service.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers the ledger routes. All routes assume the auth
// middleware already attached an identity.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/expenses", func(r chi.Router) { h.mountKind(r, KindExpense) })
	r.Route("/incomes", func(r chi.Router) { h.mountKind(r, KindIncome) })
	r.Get("/dashboard", h.dashboard)
}

func (h *Handler) mountKind(r chi.Router, kind Kind) {
	r.Post("/", h.add(kind))
	r.Get("/recent", h.recent(kind))
	r.Get("/current-month", h.currentMonth(kind))
	r.Get("/total", h.total(kind))
	r.Post("/filter", h.filter(kind))
	r.Delete("/{id}", h.delete(kind))
}

type addRequest struct {
	CategoryID int64           `json:"categoryId" validate:"required"`
	Name       string          `json:"name" validate:"required"`
	Icon       string          `json:"icon"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date"`
}

func (h *Handler) add(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := shared.IdentityFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		var req addRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
			return
		}
		if err := h.validator.Struct(req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		input := AddInput{
			CategoryID: req.CategoryID,
			Name:       req.Name,
			Icon:       req.Icon,
			Amount:     req.Amount,
		}
		if req.Date != "" {
			date, err := time.ParseInLocation(dateLayout, req.Date, time.Local)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
				return
			}
			input.Date = date
		}
		created, err := h.service.Add(r.Context(), identity.AccountID, kind, input)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, created)
	}
}

func (h *Handler) recent(kind Kind) http.HandlerFunc {
	return h.listOp(func(r *http.Request, accountID int64) ([]Transaction, error) {
		return h.service.RecentTop5(r.Context(), accountID, kind)
	})
}

func (h *Handler) currentMonth(kind Kind) http.HandlerFunc {
	return h.listOp(func(r *http.Request, accountID int64) ([]Transaction, error) {
		return h.service.CurrentMonth(r.Context(), accountID, kind)
	})
}

func (h *Handler) total(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := shared.IdentityFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		total, err := h.service.Total(r.Context(), identity.AccountID, kind)
		if err != nil {
			h.logger.Error("ledger total", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]decimal.Decimal{"total": total})
	}
}

type filterRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Keyword   string `json:"keyword"`
	SortField string `json:"sortField"`
	SortOrder string `json:"sortOrder"`
}

func (h *Handler) filter(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := shared.IdentityFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		var req filterRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
			return
		}
		input := FilterInput{
			Keyword:   req.Keyword,
			SortField: req.SortField,
			SortOrder: req.SortOrder,
		}
		for _, bound := range []struct {
			raw  string
			dest **time.Time
		}{{req.StartDate, &input.StartDate}, {req.EndDate, &input.EndDate}} {
			if bound.raw == "" {
				continue
			}
			date, err := time.ParseInLocation(dateLayout, bound.raw, time.Local)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "dates must be YYYY-MM-DD")
				return
			}
			*bound.dest = &date
		}
		list, err := h.service.Filter(r.Context(), identity.AccountID, kind, input)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, emptyAsList(list))
	}
}

func (h *Handler) delete(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := shared.IdentityFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid transaction id")
			return
		}
		if err := h.service.Delete(r.Context(), identity.AccountID, kind, id); err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.NoContent(w)
	}
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	dashboard, err := h.service.GetDashboard(r.Context(), identity.AccountID)
	if err != nil {
		h.logger.Error("ledger dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}

func (h *Handler) listOp(fetch func(*http.Request, int64) ([]Transaction, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := shared.IdentityFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		list, err := fetch(r, identity.AccountID)
		if err != nil {
			h.logger.Error("ledger list", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, emptyAsList(list))
	}
}

func emptyAsList(list []Transaction) []Transaction {
	if list == nil {
		return []Transaction{}
	}
	return list
}

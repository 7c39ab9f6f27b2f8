// Package server provides the record store's HTTP handlers.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/caraseli02/inventory-app-sub002/internal/catalog"
	apperrors "github.com/caraseli02/inventory-app-sub002/internal/errors"
	"github.com/caraseli02/inventory-app-sub002/internal/store"
	"github.com/caraseli02/inventory-app-sub002/pkg/web"
)

type Handler struct {
	store    store.ProductStore
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates the record store API handler over the given store.
func NewHandler(s store.ProductStore, logger *slog.Logger) *Handler {
	return &Handler{
		store:    s,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the record store.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)
		r.Get("/barcode/{code}", h.FindByBarcode)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/movements", h.Movements)
			r.Post("/movements", h.AddMovement)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindAll returns the full product set.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	products, err := h.store.FindAll(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(products))
	web.RespondJSON(w, mLogger, http.StatusOK, products)
}

// FindByBarcode resolves a barcode to its single matching product.
func (h *Handler) FindByBarcode(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	code := chi.URLParam(r, "code")
	if code == "" {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Barcode is required")
		return
	}

	product, err := h.store.FindByBarcode(r.Context(), code)
	if err != nil {
		if errors.Is(err, apperrors.ErrProductNotFound) {
			mLogger.DebugContext(r.Context(), "Barcode not found", "barcode", code)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("No product with barcode %s", code))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "barcode", code, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, product)
}

// Movements returns a product's movement history, most recent first.
func (h *Handler) Movements(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	movements, err := h.store.Movements(r.Context(), id.String())
	if err != nil {
		if errors.Is(err, apperrors.ErrProductNotFound) {
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving movements", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch movements")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, movements)
}

// movementDto is the payload for recording a stock movement.
type movementDto struct {
	Quantity  int    `json:"quantity"  validate:"required,gt=0"`
	Direction string `json:"direction" validate:"required,oneof=IN OUT"`
}

// AddMovement records a stock adjustment for a product.
func (h *Handler) AddMovement(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	var dto movementDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, dto) {
		return
	}

	movement, err := h.store.AddMovement(r.Context(), id.String(), dto.Quantity, catalog.Direction(dto.Direction))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrProductNotFound):
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
		case errors.Is(err, apperrors.ErrInsufficientStock):
			mLogger.WarnContext(r.Context(), "Movement rejected, insufficient stock", "ID", id, "quantity", dto.Quantity)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Insufficient stock for this movement")
		default:
			mLogger.ErrorContext(r.Context(), "Error recording movement", "ID", id, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to record movement")
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Movement recorded", "ID", movement.ID, "product_id", id, "quantity", movement.Quantity)
	web.RespondJSON(w, mLogger, http.StatusCreated, movement)
}

// productCreateDto is the payload for creating a product.
type productCreateDto struct {
	Name     string `json:"name"      validate:"required,max=100"`
	Barcode  string `json:"barcode"   validate:"omitempty,max=64"`
	Category string `json:"category"  validate:"omitempty,max=100"`
	Price    string `json:"price"     validate:"omitempty"`
	Stock    int    `json:"stock"     validate:"gte=0"`
	MinStock int    `json:"min_stock" validate:"gte=0"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

// Create adds a new product to the record store.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto productCreateDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, dto) {
		return
	}

	price := decimal.Zero
	if dto.Price != "" {
		parsed, err := decimal.NewFromString(dto.Price)
		if err != nil || parsed.IsNegative() {
			web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Invalid price: %s", dto.Price))
			return
		}
		price = parsed
	}

	product, err := h.store.Create(r.Context(), catalog.Product{
		Name:     dto.Name,
		Barcode:  dto.Barcode,
		Category: dto.Category,
		Price:    price,
		Stock:    dto.Stock,
		MinStock: dto.MinStock,
		ImageURL: dto.ImageURL,
	})
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created", "ID", product.ID, "Name", product.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, product)
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// validateStruct reports field-specific validation failures to the client.
func (h *Handler) validateStruct(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, v any) bool {
	if err := h.validate.Struct(v); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	return h.logger.With("request_id", middleware.GetReqID(r.Context()))
}

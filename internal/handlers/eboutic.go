package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"ae-portal/internal/middleware"
	"ae-portal/internal/models"
	"ae-portal/internal/services"
)

const shopPath = "/eboutic/"

// EbouticHandler serves the online shop: basket API, checkout and both
// settlement paths
type EbouticHandler struct {
	catalog    services.CatalogServiceInterface
	baskets    services.BasketServiceInterface
	checkout   services.CheckoutServiceInterface
	settlement services.SettlementServiceInterface
	accounts   services.AccountServiceInterface
	sessions   *middleware.SessionMiddleware
}

// NewEbouticHandler creates a new eboutic handler
func NewEbouticHandler(
	catalog services.CatalogServiceInterface,
	baskets services.BasketServiceInterface,
	checkout services.CheckoutServiceInterface,
	settlement services.SettlementServiceInterface,
	accounts services.AccountServiceInterface,
	sessions *middleware.SessionMiddleware,
) *EbouticHandler {
	return &EbouticHandler{
		catalog:    catalog,
		baskets:    baskets,
		checkout:   checkout,
		settlement: settlement,
		accounts:   accounts,
		sessions:   sessions,
	}
}

// Routes mounts the eboutic endpoints. The gateway callback is the only
// route reachable without a user session.
func (h *EbouticHandler) Routes(r chi.Router) {
	r.Get("/et_autoanswer", h.AutoAnswer)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/", h.Main)
		r.Post("/basket/add/{productID}", h.AddProduct)
		r.Post("/basket/remove/{productID}", h.RemoveProduct)
		r.Post("/basket/clear", h.ClearBasket)
		r.Get("/command", h.CommandRedirect)
		r.Post("/command", h.Command)
		r.Post("/pay", h.PayWithAccount)
		r.Get("/invoices", h.Invoices)
	})
}

// MainResponse is the shop landing payload
type MainResponse struct {
	Products       []*models.Product   `json:"products"`
	CustomerAmount *decimal.Decimal    `json:"customer_amount"`
	Items          []models.BasketItem `json:"items"`
}

// CommandResponse describes the materialized basket and the signed gateway
// request the client posts to pay by card
type CommandResponse struct {
	Basket         CommandBasket            `json:"basket"`
	CustomerAmount *decimal.Decimal         `json:"customer_amount"`
	ETRequest      services.PaymentRequest `json:"et_request"`
}

type CommandBasket struct {
	ID    int                 `json:"id"`
	Total decimal.Decimal     `json:"total"`
	Items []models.BasketItem `json:"items"`
}

// PaymentResponse is the result of an internal account payment
type PaymentResponse struct {
	Status         string          `json:"status"`
	BasketTotal    decimal.Decimal `json:"basket_total"`
	CustomerAmount decimal.Decimal `json:"customer_amount"`
}

// Main lists the products the user may buy with the current basket and balance
func (h *EbouticHandler) Main(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	products, err := h.catalog.ListForUser(r.Context(), user)
	if err != nil {
		h.serverError(w, r, "failed to list products", err)
		return
	}

	amount, err := h.customerAmount(r, user)
	if err != nil {
		h.serverError(w, r, "failed to load customer", err)
		return
	}

	items := []models.BasketItem{}
	basket, err := h.baskets.Current(r.Context(), h.sessions.BasketID(r), user)
	switch {
	case err == nil:
		items = basket.Items
	case !errors.Is(err, models.ErrBasketNotFound):
		h.serverError(w, r, "failed to load basket", err)
		return
	}

	writeJSON(w, http.StatusOK, MainResponse{
		Products:       products,
		CustomerAmount: amount,
		Items:          items,
	})
}

// AddProduct puts one unit of a product in the session basket
func (h *EbouticHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	productID, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.WriteJSONError(w, http.StatusNotFound, "This product does not exist")
		return
	}

	product, err := h.catalog.SellableProduct(r.Context(), user, productID)
	switch {
	case errors.Is(err, models.ErrProductNotFound):
		middleware.WriteJSONError(w, http.StatusNotFound, "This product does not exist")
		return
	case errors.Is(err, models.ErrProductNotSellable):
		middleware.WriteJSONError(w, http.StatusForbidden, "You do not have rights to add this product")
		return
	case err != nil:
		h.serverError(w, r, "failed to load product", err)
		return
	}

	basket, ok := h.sessionBasket(w, r, user)
	if !ok {
		return
	}

	basket, err = h.baskets.AddProduct(r.Context(), basket, product, 1)
	if err != nil {
		h.serverError(w, r, "failed to add product", err)
		return
	}

	writeJSON(w, http.StatusOK, basket.Summary())
}

// RemoveProduct takes one unit of a product out of the session basket
func (h *EbouticHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	productID, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.WriteJSONError(w, http.StatusNotFound, "This product does not exist")
		return
	}

	product, err := h.catalog.Product(r.Context(), productID)
	switch {
	case errors.Is(err, models.ErrProductNotFound):
		middleware.WriteJSONError(w, http.StatusNotFound, "This product does not exist")
		return
	case err != nil:
		h.serverError(w, r, "failed to load product", err)
		return
	}

	basket, ok := h.sessionBasket(w, r, user)
	if !ok {
		return
	}

	basket, err = h.baskets.RemoveProduct(r.Context(), basket, product, 1)
	if err != nil {
		h.serverError(w, r, "failed to remove product", err)
		return
	}

	writeJSON(w, http.StatusOK, basket.Summary())
}

// ClearBasket empties the session basket
func (h *EbouticHandler) ClearBasket(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	basket, err := h.baskets.Current(r.Context(), h.sessions.BasketID(r), user)
	if errors.Is(err, models.ErrBasketNotFound) {
		writeText(w, http.StatusNotFound, "No basket is currently used")
		return
	}
	if err != nil {
		h.serverError(w, r, "failed to load basket", err)
		return
	}

	if err := h.baskets.Clear(r.Context(), basket); err != nil {
		h.serverError(w, r, "failed to clear basket", err)
		return
	}
	writeText(w, http.StatusOK, "Cleared")
}

// CommandRedirect sends GET requests on the command page back to the shop
func (h *EbouticHandler) CommandRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, shopPath, http.StatusSeeOther)
}

// Command turns the cart cookie into the session basket and returns the
// signed payment request. The cookie is dropped whatever the outcome.
func (h *EbouticHandler) Command(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var cart string
	if cookie, err := r.Cookie(models.CartCookieName); err == nil {
		cart = cookie.Value
	}
	http.SetCookie(w, &http.Cookie{
		Name:   models.CartCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	basket, err := h.checkout.Materialize(r.Context(), user, cart, h.sessions.BasketID(r))
	switch {
	case errors.Is(err, models.ErrCartTampered):
		writeText(w, http.StatusBadRequest, "Cart tampering suspected")
		return
	case errors.Is(err, models.ErrCartEmpty),
		errors.Is(err, models.ErrCartMalformed),
		errors.Is(err, models.ErrProductUnavailable):
		http.Redirect(w, r, shopPath, http.StatusSeeOther)
		return
	case err != nil:
		h.serverError(w, r, "failed to build basket", err)
		return
	}

	if err := h.sessions.SetBasketID(w, r, basket.ID); err != nil {
		h.serverError(w, r, "failed to store basket in session", err)
		return
	}

	amount, err := h.customerAmount(r, user)
	if err != nil {
		h.serverError(w, r, "failed to load customer", err)
		return
	}

	request, err := h.checkout.BuildPaymentRequest(basket, user)
	if err != nil && !errors.Is(err, services.ErrSigningUnavailable) {
		h.serverError(w, r, "failed to build payment request", err)
		return
	}
	if err != nil {
		slog.WarnContext(r.Context(), "card payment unavailable", "basket_id", basket.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, CommandResponse{
		Basket: CommandBasket{
			ID:    basket.ID,
			Total: basket.Total(),
			Items: basket.Items,
		},
		CustomerAmount: amount,
		ETRequest:      request,
	})
}

// PayWithAccount settles the session basket with the user's account
func (h *EbouticHandler) PayWithAccount(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	result := h.settlement.PayWithAccount(r.Context(), user, h.sessions.BasketID(r))
	switch result.Outcome {
	case services.AccountRedirect:
		http.Redirect(w, r, shopPath, http.StatusSeeOther)
		return
	case services.AccountInternalError:
		h.serverError(w, r, "account payment failed", result.Err)
		return
	case services.AccountSuccess:
		if err := h.sessions.ClearBasketID(w, r); err != nil {
			slog.ErrorContext(r.Context(), "failed to clear session basket", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, PaymentResponse{
		Status:         result.Outcome.String(),
		BasketTotal:    result.BasketTotal,
		CustomerAmount: result.CustomerAmount,
	})
}

// AutoAnswer receives the gateway's signed payment notification
func (h *EbouticHandler) AutoAnswer(w http.ResponseWriter, r *http.Request) {
	result := h.settlement.ProcessCallback(r.Context(), r.URL.RawQuery)

	switch result.Outcome {
	case services.CallbackSettled:
		w.WriteHeader(http.StatusOK)
	case services.CallbackBadRequest:
		writeText(w, http.StatusBadRequest, "Bad arguments")
	case services.CallbackBadSignature:
		writeText(w, http.StatusBadRequest, "Bad signature")
	case services.CallbackDeclined:
		writeText(w, http.StatusAccepted, "Payment failed with error: "+result.ErrorCode)
	default:
		detail := "unknown error"
		if result.Err != nil {
			detail = result.Err.Error()
		}
		writeText(w, http.StatusInternalServerError, "Basket processing failed with error: "+detail)
	}
}

// Invoices lists the card purchases of the user
func (h *EbouticHandler) Invoices(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	invoices, err := h.accounts.Invoices(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, r, "failed to list invoices", err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

// sessionBasket returns the user's session basket, creating it and recording
// it in the session when needed. It writes the error response itself.
func (h *EbouticHandler) sessionBasket(w http.ResponseWriter, r *http.Request, user *models.User) (*models.Basket, bool) {
	current := h.sessions.BasketID(r)

	basket, err := h.baskets.GetOrCreate(r.Context(), current, user)
	if err != nil {
		h.serverError(w, r, "failed to load basket", err)
		return nil, false
	}

	if current == nil || *current != basket.ID {
		if err := h.sessions.SetBasketID(w, r, basket.ID); err != nil {
			h.serverError(w, r, "failed to store basket in session", err)
			return nil, false
		}
	}
	return basket, true
}

// customerAmount returns the user's balance, or nil without an account
func (h *EbouticHandler) customerAmount(r *http.Request, user *models.User) (*decimal.Decimal, error) {
	customer, err := h.accounts.Customer(r.Context(), user.ID)
	if errors.Is(err, models.ErrCustomerNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer.Amount, nil
}

func (h *EbouticHandler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.ErrorContext(r.Context(), msg, "path", r.URL.Path, "error", err)
	middleware.WriteJSONError(w, http.StatusInternalServerError, "Internal Server Error")
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

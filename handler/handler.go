package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/blee0617/nd035-c4-Security-and-DevOps/auth"
	"github.com/blee0617/nd035-c4-Security-and-DevOps/service"
)

// Handler is the HTTP layer that talks to service.Service
type Handler struct {
	svc service.ServiceInterface
}

// NewHandler returns a Handler instance
func NewHandler(s service.ServiceInterface) *Handler {
	return &Handler{svc: s}
}

// PublicRoutes are reachable without a token.
var PublicRoutes = []auth.Route{
	{Method: http.MethodPost, Path: "/api/user/create"},
	{Method: http.MethodPost, Path: "/login"},
	{Method: http.MethodGet, Path: "/health"},
}

// RegisterRoutes registers all routes on the provided router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/login", h.Login).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()

	// Users
	api.HandleFunc("/user/create", h.CreateUser).Methods("POST")
	api.HandleFunc("/user/id/{id:[0-9]+}", h.FindUserByID).Methods("GET")
	api.HandleFunc("/user/{username}", h.FindUserByUsername).Methods("GET")

	// Items
	api.HandleFunc("/item", h.ListItems).Methods("GET")
	api.HandleFunc("/item/name/{name}", h.FindItemsByName).Methods("GET")
	api.HandleFunc("/item/{id:[0-9]+}", h.GetItem).Methods("GET")

	// Cart
	api.HandleFunc("/cart/addToCart", h.AddToCart).Methods("POST")
	api.HandleFunc("/cart/removeFromCart", h.RemoveFromCart).Methods("POST")

	// Orders
	api.HandleFunc("/order/submit/{username}", h.SubmitOrder).Methods("POST")
	api.HandleFunc("/order/history/{username}", h.OrderHistory).Methods("GET")
}

// --- request / response shapes ---
type createUserReq struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type modifyCartReq struct {
	Username string `json:"username"`
	ItemID   int64  `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// --- helpers ---
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeServiceErr maps the service error taxonomy onto HTTP status codes.
func writeServiceErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict):
		writeErr(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		writeErr(w, http.StatusUnauthorized, "unauthorized")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}

// actingAs rejects with 403 a request that names a user other than the token
// subject.
func actingAs(w http.ResponseWriter, r *http.Request, username string) bool {
	subject, ok := auth.UsernameFromContext(r.Context())
	if ok && subject == username {
		return true
	}
	zerolog.Ctx(r.Context()).Warn().
		Str("subject", subject).
		Str("username", username).
		Msg("rejected request for another user")
	writeErr(w, http.StatusForbidden, "forbidden")
	return false
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

// --- Handler ---

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Login handles POST /login and returns the token in the Authorization header.
// body: { "username": "...", "password": "..." }
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	token, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	w.Header().Set(auth.HeaderName, auth.TokenPrefix+token)
	w.WriteHeader(http.StatusOK)
}

// CreateUser handles POST /api/user/create
// body: { "username": "...", "password": "...", "confirmPassword": "..." }
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.svc.RegisterUser(r.Context(), req.Username, req.Password, req.ConfirmPassword)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// FindUserByUsername handles GET /api/user/{username}
func (h *Handler) FindUserByUsername(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.FindUserByUsername(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// FindUserByID handles GET /api/user/id/{id}
func (h *Handler) FindUserByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid id")
		return
	}
	u, err := h.svc.FindUserByID(r.Context(), id)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ListItems handles GET /api/item
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListItems(r.Context())
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetItem handles GET /api/item/{id}
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "invalid id")
		return
	}
	item, err := h.svc.GetItem(r.Context(), id)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// FindItemsByName handles GET /api/item/name/{name}
func (h *Handler) FindItemsByName(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.FindItemsByName(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// AddToCart handles POST /api/cart/addToCart
// body: { "username": "...", "itemId": 1, "quantity": 2 }
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req modifyCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !actingAs(w, r, req.Username) {
		return
	}
	cart, err := h.svc.AddToCart(r.Context(), req.Username, req.ItemID, req.Quantity)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// RemoveFromCart handles POST /api/cart/removeFromCart
// body: { "username": "...", "itemId": 1, "quantity": 2 }
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req modifyCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !actingAs(w, r, req.Username) {
		return
	}
	cart, err := h.svc.RemoveFromCart(r.Context(), req.Username, req.ItemID, req.Quantity)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// SubmitOrder handles POST /api/order/submit/{username}
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if !actingAs(w, r, username) {
		return
	}
	order, err := h.svc.SubmitOrder(r.Context(), username)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// OrderHistory handles GET /api/order/history/{username}
func (h *Handler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if !actingAs(w, r, username) {
		return
	}
	orders, err := h.svc.OrderHistory(r.Context(), username)
	if err != nil {
		writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

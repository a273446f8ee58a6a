package httpapi

import (
	"context"
	"net/http"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/orders"
)

type purchaseRequest struct {
	Products []orders.PurchaseItem `json:"products"`
}

type customOrderRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type supplierOrderRequest struct {
	SupplierID      int64 `json:"supplier_id"`
	ProductID       int64 `json:"product_id"`
	Amount          int32 `json:"amount"`
	TotalPriceMinor int64 `json:"total_price_minor"`
}

func (h *handlers) createPurchase(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req purchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.orders.CreatePurchaseOrder(r.Context(), user.ID, req.Products)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handlers) createCustom(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req customOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.orders.CreateCustomOrder(r.Context(), user.ID, req.Name, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handlers) listOwnOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, err := pageFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var status domain.OrderStatus
	if raw := r.URL.Query().Get("state"); raw != "" {
		if status, err = domain.ParseOrderStatus(raw); err != nil {
			writeError(w, r, err)
			return
		}
	}
	result, err := h.orders.ListOrders(r.Context(), user.ID, status, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) getOwnOrder(w http.ResponseWriter, r *http.Request) {
	serveByID(w, r, h.orders.GetOrder)
}

func (h *handlers) getAnyOrder(w http.ResponseWriter, r *http.Request) {
	serveByID(w, r, h.orders.GetAnyOrder)
}

func (h *handlers) getCustomOrder(w http.ResponseWriter, r *http.Request) {
	serveByID(w, r, h.orders.GetCustomOrder)
}

func (h *handlers) getSupplierOrder(w http.ResponseWriter, r *http.Request) {
	serveByID(w, r, h.orders.GetSupplierOrder)
}

func (h *handlers) listAllOrders(w http.ResponseWriter, r *http.Request) {
	servePage(w, r, h.orders.ListAllOrders)
}

func (h *handlers) listCustomOrders(w http.ResponseWriter, r *http.Request) {
	servePage(w, r, h.orders.ListCustomOrders)
}

func (h *handlers) listSupplierOrders(w http.ResponseWriter, r *http.Request) {
	servePage(w, r, h.orders.ListSupplierOrders)
}

func (h *handlers) createSupplierOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req supplierOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.orders.CreateSupplierOrder(r.Context(), user.ID, req.SupplierID, req.ProductID, req.Amount, req.TotalPriceMinor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// serveByID обслуживает GET /…/{id} для операций вида (ctx, userID, id).
func serveByID[T any](w http.ResponseWriter, r *http.Request, get func(ctx context.Context, userID, id int64) (T, error)) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := get(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// servePage обслуживает постраничные административные списки.
func servePage[T any](w http.ResponseWriter, r *http.Request, list func(ctx context.Context, userID int64, page domain.PageRequest) (domain.Page[T], error)) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, err := pageFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := list(r.Context(), user.ID, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

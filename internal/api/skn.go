package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	interf "github.com/glkeru/skn/internal/interfaces"
	model "github.com/glkeru/skn/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handler struct {
	router    *mux.Router
	placement interf.Placement
	ledger    interf.Ledger
	crediter  interf.Crediter
	admin     interf.Admin
	validate  *validator.Validate
	logger    *zap.Logger
}

// запросы

type PlaceRequest struct {
	SponsorID string `json:"sponsorId"`
}

type ApproveRequest struct {
	AdminID string `json:"adminId" validate:"required"`
	Notes   string `json:"notes"`
}

type RejectRequest struct {
	AdminID string `json:"adminId" validate:"required"`
	Reason  string `json:"reason" validate:"required"`
}

// RequestID - ключ идемпотентности клиента, без него повтор создаст новую заявку
type WithdrawalRequest struct {
	RequestID string `json:"requestId" validate:"omitempty,max=64"`
	MemberID  string `json:"memberId" validate:"required"`
	Amount    int64  `json:"amount" validate:"gt=0"`
	Pin       string `json:"pin" validate:"required,len=6"`
}

type PinsRequest struct {
	Count   int    `json:"count" validate:"min=1,max=1000"`
	AdminID string `json:"adminId" validate:"required"`
}

type CreditRequest struct {
	SourceID string `json:"sourceId" validate:"required"`
	Amount   int64  `json:"amount" validate:"gt=0"`
	Note     string `json:"note"`
}

// ответы

type BalanceResponse struct {
	MemberID  string `json:"memberId"`
	Available int64  `json:"available"`
}

func NewHandler(placement interf.Placement, ledger interf.Ledger, crediter interf.Crediter, admin interf.Admin, logger *zap.Logger) *Handler {
	router := mux.NewRouter()
	handler := &Handler{router, placement, ledger, crediter, admin, validator.New(), logger}
	router.Use(Observe(logger))

	// дерево
	router.HandleFunc("/members/{id}", handler.GetMemberHandler).Methods(http.MethodGet)
	router.HandleFunc("/members/{id}/place", handler.PlaceHandler).Methods(http.MethodPost)
	router.HandleFunc("/members/{id}/slot", handler.PreviewSlotHandler).Methods(http.MethodGet)

	// начисления
	router.HandleFunc("/members/{id}/pairs", handler.PairsHandler).Methods(http.MethodGet)
	router.HandleFunc("/members/{id}/earnings", handler.EarningsHandler).Methods(http.MethodGet)
	router.HandleFunc("/members/{id}/earnings", handler.CreditHandler).Methods(http.MethodPost)
	router.HandleFunc("/members/{id}/balance", handler.BalanceHandler).Methods(http.MethodGet)

	// администрирование
	router.HandleFunc("/payments/{id}/approve", handler.ApprovePaymentHandler).Methods(http.MethodPost)
	router.HandleFunc("/payments/{id}/reject", handler.RejectPaymentHandler).Methods(http.MethodPost)
	router.HandleFunc("/withdrawals", handler.CreateWithdrawalHandler).Methods(http.MethodPost)
	router.HandleFunc("/withdrawals/{id}/approve", handler.ApproveWithdrawalHandler).Methods(http.MethodPost)
	router.HandleFunc("/withdrawals/{id}/reject", handler.RejectWithdrawalHandler).Methods(http.MethodPost)
	router.HandleFunc("/pins", handler.GeneratePinsHandler).Methods(http.MethodPost)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return handler
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.router.ServeHTTP(w, req)
}

func (h *Handler) Log(msg string, service string, err error) {
	h.logger.Error(msg,
		zap.String("service", service),
		zap.Error(err),
	)
}

// статус ответа по ошибке сервиса
func errorStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrNoSponsor),
		errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, model.ErrInvalidPin),
		errors.Is(err, model.ErrInsufficientBalance):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrDuplicate),
		errors.Is(err, model.ErrConcurrentPlacement),
		errors.Is(err, model.ErrSlotNotFound),
		errors.Is(err, model.ErrNoPins):
		return http.StatusConflict
	case errors.Is(err, model.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(w http.ResponseWriter, service string, err error) {
	code := errorStatus(err)
	if code >= http.StatusInternalServerError {
		h.Log("Service call", service, err)
	}
	http.Error(w, err.Error(), code)
}

// тело запроса в структуру с проверкой
func (h *Handler) decode(w http.ResponseWriter, req *http.Request, service string, dst any) bool {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		h.Log("Get request body", service, err)
		http.Error(w, "Body is empty", http.StatusBadRequest)
		return false
	}
	defer req.Body.Close()
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		http.Error(w, "Body is not correct", http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, service string, code int, v any) {
	j, err := json.Marshal(v)
	if err != nil {
		h.Log("Marshal", service, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(j)
}

// Участник
func (h *Handler) GetMemberHandler(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	member, err := h.placement.Member(req.Context(), id)
	if err != nil {
		h.fail(w, "GetMemberHandler", err)
		return
	}
	h.respond(w, "GetMemberHandler", http.StatusOK, member)
}

// Размещение в дереве после оплаты
func (h *Handler) PlaceHandler(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	var body PlaceRequest
	if !h.decode(w, req, "PlaceHandler", &body) {
		return
	}
	if err := h.placement.PlaceMember(req.Context(), id, body.SponsorID); err != nil {
		h.fail(w, "PlaceHandler", err)
		return
	}
	member, err := h.placement.Member(req.Context(), id)
	if err != nil {
		h.fail(w, "PlaceHandler", err)
		return
	}
	h.respond(w, "PlaceHandler", http.StatusOK, member)
}

// Слот, который получит новый участник спонсора
func (h *Handler) PreviewSlotHandler(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	slot, err := h.placement.PreviewSlot(req.Context(), id)
	if err != nil {
		h.fail(w, "PreviewSlotHandler", err)
		return
	}
	h.respond(w, "PreviewSlotHandler", http.StatusOK, slot)
}

func (h *Handler) PairsHandler(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	pairs, err := h.ledger.Pairs(req.Context(), id)
	if err != nil {
		h.fail(w, "PairsHandler", err)
		return
	}
	if pairs == nil {
		pairs = []model.PairRecord{}
	}
	h.respond(w, "PairsHandler", http.StatusOK, pairs)
}

func (h *Handler) EarningsHandler(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	earnings, err := h.ledger.Earnings(req.Context(), id)
	if err != nil {
		h.fail(w, "EarningsHandler", err)
		return
	}
	if earnings == nil {
		earnings = []model.Earning{}
	}
	h.respond(w, "EarningsHandler", http.StatusOK, earnings)
}

// Ручное начисление, повтор с тем же sourceId ничего не меняет
func (h *Handler) CreditHandler(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	var body CreditRequest
	if !h.decode(w, req, "CreditHandler", &body) {
		return
	}
	if err := h.crediter.CreditManual(req.Context(), id, body.SourceID, body.Amount, body.Note); err != nil {
		h.fail(w, "CreditHandler", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) BalanceHandler(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	amount, err := h.admin.AvailableBalance(req.Context(), id)
	if err != nil {
		h.fail(w, "BalanceHandler", err)
		return
	}
	h.respond(w, "BalanceHandler", http.StatusOK, &BalanceResponse{id, amount})
}

func (h *Handler) ApprovePaymentHandler(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	var body ApproveRequest
	if !h.decode(w, req, "ApprovePaymentHandler", &body) {
		return
	}
	if err := h.admin.ApprovePayment(req.Context(), id, body.AdminID, body.Notes); err != nil {
		h.fail(w, "ApprovePaymentHandler", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RejectPaymentHandler(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	var body RejectRequest
	if !h.decode(w, req, "RejectPaymentHandler", &body) {
		return
	}
	if err := h.admin.RejectPayment(req.Context(), id, body.AdminID, body.Reason); err != nil {
		h.fail(w, "RejectPaymentHandler", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateWithdrawalHandler(w http.ResponseWriter, req *http.Request) {
	var body WithdrawalRequest
	if !h.decode(w, req, "CreateWithdrawalHandler", &body) {
		return
	}
	wr, err := h.admin.CreateWithdrawal(req.Context(), body.RequestID, body.MemberID, body.Amount, body.Pin)
	if err != nil {
		h.fail(w, "CreateWithdrawalHandler", err)
		return
	}
	h.respond(w, "CreateWithdrawalHandler", http.StatusCreated, wr)
}

func (h *Handler) ApproveWithdrawalHandler(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	var body ApproveRequest
	if !h.decode(w, req, "ApproveWithdrawalHandler", &body) {
		return
	}
	if err := h.admin.ApproveWithdrawal(req.Context(), id, body.AdminID, body.Notes); err != nil {
		h.fail(w, "ApproveWithdrawalHandler", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RejectWithdrawalHandler(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	var body RejectRequest
	if !h.decode(w, req, "RejectWithdrawalHandler", &body) {
		return
	}
	if err := h.admin.RejectWithdrawal(req.Context(), id, body.AdminID, body.Reason); err != nil {
		h.fail(w, "RejectWithdrawalHandler", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GeneratePinsHandler(w http.ResponseWriter, req *http.Request) {
	var body PinsRequest
	if !h.decode(w, req, "GeneratePinsHandler", &body) {
		return
	}
	pins, err := h.admin.GeneratePins(req.Context(), body.Count, body.AdminID)
	if err != nil {
		h.fail(w, "GeneratePinsHandler", err)
		return
	}
	h.respond(w, "GeneratePinsHandler", http.StatusCreated, pins)
}

// Package httpapi is the thin JSON glue between HTTP callers and the core
// services. It decodes requests, resolves the acting user from the request
// context, calls exactly one service operation, and maps the error taxonomy
// to status codes. No business logic lives here.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"splitbook/internal/apperr"
	"splitbook/internal/auth"
	"splitbook/internal/middleware"
	"splitbook/internal/models"
	"splitbook/internal/service"
)

// Handler bundles the HTTP handlers with the services they delegate to.
type Handler struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	expenses      *service.ExpenseService
	balances      *service.BalanceService
	settlements   *service.SettlementService
	friends       *service.FriendService
	groups        *service.GroupService
}

// NewHandler creates a Handler over the given services.
func NewHandler(
	authenticator auth.Authenticator,
	jwtManager *auth.JWTManager,
	expenses *service.ExpenseService,
	balances *service.BalanceService,
	settlements *service.SettlementService,
	friends *service.FriendService,
	groups *service.GroupService,
) *Handler {
	return &Handler{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		expenses:      expenses,
		balances:      balances,
		settlements:   settlements,
		friends:       friends,
		groups:        groups,
	}
}

// Routes mounts all API routes on a new chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logging)

	r.Post("/api/register", h.register)
	r.Post("/api/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtManager))

		r.Post("/api/expenses", h.createExpense)
		r.Get("/api/expenses", h.listExpenses)
		r.Get("/api/expenses/{expenseID}", h.getExpense)
		r.Delete("/api/expenses/{expenseID}", h.deleteExpense)

		r.Get("/api/balances", h.activeBalances)
		r.Get("/api/balances/{userID}", h.netBalance)

		r.Post("/api/settlements", h.settle)

		r.Get("/api/friends", h.listFriends)
		r.Put("/api/friends/{userID}", h.addFriend)
		r.Delete("/api/friends/{userID}", h.removeFriend)

		r.Post("/api/groups", h.createGroup)
		r.Get("/api/groups", h.listGroups)
		r.Get("/api/groups/{groupID}", h.getGroup)
		r.Post("/api/groups/{groupID}/members", h.addGroupMember)
		r.Get("/api/groups/{groupID}/expenses", h.groupExpenses)
		r.Get("/api/groups/{groupID}/balances", h.groupBalances)
	})

	return r
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := h.authenticator.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := h.authenticator.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := h.jwtManager.Generate(user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Token string       `json:"token"`
		User  userResponse `json:"user"`
	}{Token: token, User: toUserResponse(user)})
}

type splitResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Settled   bool            `json:"settled"`
	SettledAt int64           `json:"settled_at,omitempty"`
}

type expenseResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	SpentAt     int64           `json:"spent_at"`
	PayerID     string          `json:"payer_id"`
	GroupID     string          `json:"group_id,omitempty"`
	Splits      []splitResponse `json:"splits,omitempty"`
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	resp := expenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		SpentAt:     e.SpentAt,
		PayerID:     e.PayerID,
		GroupID:     e.GroupID,
	}
	for _, s := range e.Splits {
		resp.Splits = append(resp.Splits, splitResponse{
			ID:        s.ID,
			UserID:    s.UserID,
			Amount:    s.Amount,
			Settled:   s.Settled,
			SettledAt: s.SettledAt,
		})
	}
	return resp
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	var req struct {
		Description    string          `json:"description"`
		Amount         decimal.Decimal `json:"amount"`
		ParticipantIDs []string        `json:"participant_ids"`
		GroupID        string          `json:"group_id"`
		// PayerID switches to the "someone else paid, I owe in full"
		// mode; when empty the actor paid and the amount splits equally.
		PayerID string `json:"payer_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var expense *models.Expense
	var err error
	if req.PayerID == "" || req.PayerID == actorID {
		expense, err = h.expenses.CreateEqualSplit(r.Context(), actorID, req.Description, req.Amount, req.ParticipantIDs, req.GroupID)
	} else {
		if len(req.ParticipantIDs) > 0 {
			writeError(w, apperr.Validationf("participant_ids not allowed when payer_id is set"))
			return
		}
		expense, err = h.expenses.CreateOwedInFull(r.Context(), actorID, req.PayerID, req.Description, req.Amount, req.GroupID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	expenses, err := h.expenses.ExpensesByPayer(r.Context(), actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getExpense(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	expense, err := h.expenses.GetExpense(r.Context(), chi.URLParam(r, "expenseID"), actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	if err := h.expenses.DeleteExpense(r.Context(), chi.URLParam(r, "expenseID"), actorID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type balanceResponse struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

func toBalanceResponses(balances []service.FriendBalance) []balanceResponse {
	out := make([]balanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, balanceResponse{UserID: b.UserID, Amount: b.Amount})
	}
	return out
}

func (h *Handler) activeBalances(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	balances, err := h.balances.ActiveBalances(r.Context(), actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceResponses(balances))
}

func (h *Handler) netBalance(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	otherID := chi.URLParam(r, "userID")
	groupID := r.URL.Query().Get("group_id")

	amount, err := h.balances.NetBalance(r.Context(), actorID, otherID, groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{UserID: otherID, Amount: amount})
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	var req struct {
		SplitID     string `json:"split_id"`
		OtherUserID string `json:"other_user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	// The two entry points are mutually distinct: one split, or everything
	// with one user.
	switch {
	case req.SplitID != "" && req.OtherUserID != "":
		writeError(w, apperr.Validationf("provide split_id or other_user_id, not both"))
	case req.SplitID != "":
		if err := h.settlements.SettleSplit(r.Context(), req.SplitID, actorID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Settled int `json:"settled"`
		}{Settled: 1})
	case req.OtherUserID != "":
		count, err := h.settlements.SettleAllWith(r.Context(), actorID, req.OtherUserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Settled int `json:"settled"`
		}{Settled: count})
	default:
		writeError(w, apperr.Validationf("split_id or other_user_id required"))
	}
}

func (h *Handler) listFriends(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	friends, err := h.friends.Friends(r.Context(), actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]userResponse, 0, len(friends))
	for _, f := range friends {
		out = append(out, toUserResponse(f))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) addFriend(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	if err := h.friends.AddFriend(r.Context(), actorID, chi.URLParam(r, "userID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) removeFriend(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	if err := h.friends.RemoveFriend(r.Context(), actorID, chi.URLParam(r, "userID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type groupResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CreatedBy string   `json:"created_by"`
	CreatedAt int64    `json:"created_at"`
	MemberIDs []string `json:"member_ids,omitempty"`
}

func toGroupResponse(g *models.Group) groupResponse {
	return groupResponse{
		ID:        g.ID,
		Name:      g.Name,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt,
		MemberIDs: g.MemberIDs,
	}
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	var req struct {
		Name      string   `json:"name"`
		MemberIDs []string `json:"member_ids"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	group, err := h.groups.CreateGroup(r.Context(), actorID, req.Name, req.MemberIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	groups, err := h.groups.GroupsForUser(r.Context(), actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroupResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getGroup(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	group, err := h.groups.GetGroup(r.Context(), chi.URLParam(r, "groupID"), actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

func (h *Handler) addGroupMember(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.groups.AddMember(r.Context(), chi.URLParam(r, "groupID"), actorID, req.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) groupExpenses(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	expenses, err := h.groups.GroupExpenses(r.Context(), chi.URLParam(r, "groupID"), actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) groupBalances(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	balances, err := h.balances.GroupBalances(r.Context(), actorID, chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceResponses(balances))
}

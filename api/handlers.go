package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"betpal/models"
	"betpal/service"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// Handler holds the engine services the HTTP facade delegates to
type Handler struct {
	Users         service.UserService
	Bets          service.BetService
	Friends       service.FriendService
	Notifications service.NotificationService
}

// NewHandler creates a new handler
func NewHandler(users service.UserService, bets service.BetService, friends service.FriendService, notifications service.NotificationService) *Handler {
	return &Handler{
		Users:         users,
		Bets:          bets,
		Friends:       friends,
		Notifications: notifications,
	}
}

// currentUserID reads the caller's identity from the X-User-ID header. The
// identity provider in front of this service is trusted to set it.
func currentUserID(r *http.Request) (int64, bool) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// writeError maps engine error kinds onto HTTP statuses. Anything without a
// kind is a 500.
func writeError(w http.ResponseWriter, err error) {
	kind, ok := service.KindOf(err)
	if !ok {
		log.WithError(err).Error("Unhandled error in HTTP handler")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch kind {
	case service.KindValidation:
		status = http.StatusBadRequest
	case service.KindAuthorization:
		status = http.StatusUnauthorized
	case service.KindInsufficientFunds:
		status = http.StatusPaymentRequired
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindStateConflict:
		status = http.StatusConflict
	case service.KindTransientStore:
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: string(kind)})
}

func writeUnauthenticated(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid X-User-ID header"})
}

func urlID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// GetOrCreateUser resolves a username to a user record, creating it with the
// starting balance on first sight
func (h *Handler) GetOrCreateUser(w http.ResponseWriter, r *http.Request) {
	var req getOrCreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.Users.GetOrCreateUser(r.Context(), req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// GetCurrentUser returns the caller's profile
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	user, err := h.Users.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// CreateBet creates a bet and invites the named participants
func (h *Handler) CreateBet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var req createBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	detail, err := h.Bets.CreateBet(r.Context(), userID, service.CreateBetParams{
		Title:                req.Title,
		Description:          req.Description,
		Stake:                req.Stake,
		Deadline:             req.Deadline,
		ResolutionType:       models.ResolutionType(req.ResolutionType),
		JudgeID:              req.JudgeID,
		ParticipantUsernames: req.ParticipantUsernames,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBetResponse(detail.Bet, detail.Participants))
}

// ListBets returns the caller's bets
func (h *Handler) ListBets(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	details, err := h.Bets.GetBetsByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]betResponse, 0, len(details))
	for _, d := range details {
		out = append(out, toBetResponse(d.Bet, d.Participants))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetBet returns a single bet with its participants
func (h *Handler) GetBet(w http.ResponseWriter, r *http.Request) {
	betID, err := urlID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid bet id"})
		return
	}

	detail, err := h.Bets.GetBetDetail(r.Context(), betID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBetResponse(detail.Bet, detail.Participants))
}

// JoinBet accepts an invitation to a bet
func (h *Handler) JoinBet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}
	betID, err := urlID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid bet id"})
		return
	}

	bet, err := h.Bets.JoinBet(r.Context(), userID, betID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBetResponse(bet, nil))
}

// RespondToInvitation accepts or rejects an invitation to a pending bet
func (h *Handler) RespondToInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}
	betID, err := urlID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid bet id"})
		return
	}

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	bet, err := h.Bets.RespondToInvitation(r.Context(), userID, betID, req.Accept)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBetResponse(bet, nil))
}

// ResolveBet completes a bet and pays the pot to the winner
func (h *Handler) ResolveBet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}
	betID, err := urlID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid bet id"})
		return
	}

	var req resolveBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.Bets.ResolveBet(r.Context(), userID, betID, req.WinnerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, betResultResponse{
		Bet:               toBetResponse(result.Bet, nil),
		WinnerID:          result.WinnerID,
		TotalStakeholders: result.TotalStakeholders,
		TotalWinnings:     result.TotalWinnings,
	})
}

// InviteParticipant invites another user to an existing bet
func (h *Handler) InviteParticipant(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}
	betID, err := urlID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid bet id"})
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	participant, err := h.Bets.InviteParticipant(r.Context(), userID, betID, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, participantResponse{
		UserID: participant.ParticipantID,
		Status: string(participant.Status),
	})
}

// ListFriends returns the caller's friendships grouped by direction and state
func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	list, err := h.Friends.GetFriends(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friendListResponse{
		Friends:         toFriendshipResponses(list.Friends),
		PendingRequests: toFriendshipResponses(list.PendingRequests),
		SentRequests:    toFriendshipResponses(list.SentRequests),
	})
}

// AddFriend sends a friend request
func (h *Handler) AddFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var req addFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	friendship, err := h.Friends.AddFriend(r.Context(), userID, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFriendshipResponse(friendship))
}

// AcceptFriendRequest accepts a pending friend request
func (h *Handler) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}
	friendshipID, err := urlID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid friendship id"})
		return
	}

	friendship, err := h.Friends.AcceptFriendRequest(r.Context(), userID, friendshipID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFriendshipResponse(friendship))
}

// RejectFriendRequest rejects a pending friend request
func (h *Handler) RejectFriendRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}
	friendshipID, err := urlID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid friendship id"})
		return
	}

	if err := h.Friends.RejectFriendRequest(r.Context(), userID, friendshipID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveFriend deletes a friendship the caller is part of
func (h *Handler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}
	friendshipID, err := urlID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid friendship id"})
		return
	}

	if err := h.Friends.RemoveFriend(r.Context(), userID, friendshipID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListNotifications returns the caller's notifications, newest first
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	notifications, err := h.Notifications.GetUserNotifications(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, toNotificationResponse(n))
	}
	writeJSON(w, http.StatusOK, out)
}

// MarkNotificationRead flips the read flag
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUserID(r); !ok {
		writeUnauthenticated(w)
		return
	}
	notificationID, err := urlID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid notification id"})
		return
	}

	if err := h.Notifications.MarkNotificationAsRead(r.Context(), notificationID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package api

import (
	"time"

	"betpal/models"
)

type userResponse struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	TokenBalance int64  `json:"token_balance"`
	TotalWins    int64  `json:"total_wins"`
	TotalLosses  int64  `json:"total_losses"`
}

type getOrCreateUserRequest struct {
	Username string `json:"username"`
}

type createBetRequest struct {
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Stake                int64     `json:"stake"`
	Deadline             time.Time `json:"deadline"`
	ResolutionType       string    `json:"resolution_type"`
	JudgeID              *int64    `json:"judge_id,omitempty"`
	ParticipantUsernames []string  `json:"participants"`
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

type resolveBetRequest struct {
	WinnerID int64 `json:"winner_id"`
}

type inviteRequest struct {
	Username string `json:"username"`
}

type addFriendRequest struct {
	Username string `json:"username"`
}

type participantResponse struct {
	UserID int64  `json:"user_id"`
	Status string `json:"status"`
}

type betResponse struct {
	ID             int64                 `json:"id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Stake          int64                 `json:"stake"`
	Deadline       time.Time             `json:"deadline"`
	Status         string                `json:"status"`
	ResolutionType string                `json:"resolution_type"`
	CreatedBy      int64                 `json:"created_by"`
	JudgeID        *int64                `json:"judge_id,omitempty"`
	WinnerID       *int64                `json:"winner_id,omitempty"`
	Participants   []participantResponse `json:"participants,omitempty"`
}

type betResultResponse struct {
	Bet               betResponse `json:"bet"`
	WinnerID          int64       `json:"winner_id"`
	TotalStakeholders int         `json:"total_stakeholders"`
	TotalWinnings     int64       `json:"total_winnings"`
}

type friendshipResponse struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	FriendID int64  `json:"friend_id"`
	Status   string `json:"status"`
}

type friendListResponse struct {
	Friends         []friendshipResponse `json:"friends"`
	PendingRequests []friendshipResponse `json:"pending_requests"`
	SentRequests    []friendshipResponse `json:"sent_requests"`
}

type notificationResponse struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	BetID     *int64    `json:"bet_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Username:     u.Username,
		TokenBalance: u.TokenBalance,
		TotalWins:    u.TotalWins,
		TotalLosses:  u.TotalLosses,
	}
}

func toBetResponse(b *models.Bet, participants []*models.BetParticipant) betResponse {
	resp := betResponse{
		ID:             b.ID,
		Title:          b.Title,
		Description:    b.Description,
		Stake:          b.Stake,
		Deadline:       b.Deadline,
		Status:         string(b.Status),
		ResolutionType: string(b.ResolutionType),
		CreatedBy:      b.CreatedBy,
		JudgeID:        b.JudgeID,
		WinnerID:       b.WinnerID,
	}
	for _, p := range participants {
		resp.Participants = append(resp.Participants, participantResponse{
			UserID: p.ParticipantID,
			Status: string(p.Status),
		})
	}
	return resp
}

func toFriendshipResponse(f *models.Friendship) friendshipResponse {
	return friendshipResponse{
		ID:       f.ID,
		UserID:   f.UserID,
		FriendID: f.FriendID,
		Status:   string(f.Status),
	}
}

func toFriendshipResponses(friendships []*models.Friendship) []friendshipResponse {
	out := make([]friendshipResponse, 0, len(friendships))
	for _, f := range friendships {
		out = append(out, toFriendshipResponse(f))
	}
	return out
}

func toNotificationResponse(n *models.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		Message:   n.Message,
		Type:      string(n.Type),
		Read:      n.Read,
		BetID:     n.BetID,
		CreatedAt: n.CreatedAt,
	}
}

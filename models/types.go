package models

import "time"

// Initiative/item status constants
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Vote type constants
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// ValidStatus reports whether s is a recognized initiative/item status.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusCompleted || s == StatusCancelled
}

// ValidVoteType reports whether s is a recognized vote type.
func ValidVoteType(s string) bool {
	return s == VoteUp || s == VoteDown
}

// Request types

type NonceRequest struct {
	Address string `json:"address"`
}

type VerifyRequest struct {
	Signature string `json:"signature"`
	Message   string `json:"message"`
	Address   string `json:"address"`
}

type CreateInitiativeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type UpdateInitiativeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type CreateItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type UpdateItemStatusRequest struct {
	Status string `json:"status"`
}

type VoteRequest struct {
	Type string `json:"type"`
}

// Response types

type NonceResponse struct {
	Nonce string `json:"nonce"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type VoteResponse struct {
	UpVotes   int     `json:"upVotes"`
	DownVotes int     `json:"downVotes"`
	UserVote  *string `json:"userVote"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Domain types

type Initiative struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type InitiativeSummary struct {
	Initiative
	ItemCount int `json:"itemCount"`
}

type Item struct {
	ID           string    `json:"id"`
	InitiativeID string    `json:"initiativeId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	UpVotes      int       `json:"upVotes"`
	DownVotes    int       `json:"downVotes"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	// UserVote is the authenticated caller's current vote on this item,
	// nil when unauthenticated or not voted.
	UserVote *string `json:"userVote,omitempty"`
}

type InitiativeWithItems struct {
	Initiative
	Items []Item `json:"items"`
}

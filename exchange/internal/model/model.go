package model

import (
	"time"

	"github.com/google/uuid"
)

type Paging struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalElements int `json:"totalElements"`
}

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=5,max=20"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"token"`
	ExpiresIn   int64  `json:"expiresIn"`
}

type BookType string

const (
	BookTypeSell BookType = "sell"
	BookTypeLend BookType = "lend"
)

type BookStatus string

const (
	BookStatusAvailable BookStatus = "available"
	BookStatusExchanged BookStatus = "exchanged"
)

type Book struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"userId" db:"user_id"`
	Title     string     `json:"title" db:"title"`
	Author    string     `json:"author" db:"author"`
	Condition string     `json:"condition" db:"condition"`
	Type      BookType   `json:"type" db:"type"`
	Price     float64    `json:"price" db:"price"`
	City      string     `json:"city" db:"city"`
	State     string     `json:"state" db:"state"`
	ImageURL  string     `json:"imageUrl" db:"image_url"`
	Status    BookStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// BookListing is a browse row with the owner's username attached.
type BookListing struct {
	Book
	OwnerUsername string `json:"ownerUsername" db:"owner_username"`
}

type ListBooks struct {
	Paging `json:",inline"`
	Items  []BookListing `json:"items"`
}

type BookFilter struct {
	City  string
	State string
	Page  int
	Size  int
}

type CreateBookRequest struct {
	Title     string   `json:"title" validate:"required,max=200"`
	Author    string   `json:"author" validate:"required,max=200"`
	Condition string   `json:"condition" validate:"required,max=50"`
	Type      BookType `json:"type" validate:"required,oneof=sell lend"`
	Price     float64  `json:"price" validate:"gte=0"`
	City      string   `json:"city" validate:"required,max=100"`
	State     string   `json:"state" validate:"required,max=100"`
	ImageURL  string   `json:"imageUrl" validate:"omitempty,url"`
}

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
)

type Request struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	BookID      uuid.UUID     `json:"bookId" db:"book_id"`
	RequesterID uuid.UUID     `json:"requesterId" db:"requester_id"`
	OwnerID     uuid.UUID     `json:"ownerId" db:"owner_id"`
	Status      RequestStatus `json:"status" db:"status"`
	IsDelivered bool          `json:"isDelivered" db:"is_delivered"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
}

// IsParty reports whether userID is the owner or the requester.
func (r Request) IsParty(userID uuid.UUID) bool {
	return r.OwnerID == userID || r.RequesterID == userID
}

type CreateRequest struct {
	BookID uuid.UUID `json:"bookId" validate:"required"`
}

type UpdateStatusRequest struct {
	Status RequestStatus `json:"status" validate:"required,oneof=accepted rejected"`
}

type BookRef struct {
	ID    uuid.UUID `json:"id" db:"id"`
	Title string    `json:"title" db:"title"`
}

type UserRef struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Username string    `json:"username" db:"username"`
}

// RequestView is a request populated with book title and party usernames.
type RequestView struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Book        BookRef       `json:"book" db:"book"`
	Requester   UserRef       `json:"requester" db:"requester"`
	Owner       UserRef       `json:"owner" db:"owner"`
	Status      RequestStatus `json:"status" db:"status"`
	IsDelivered bool          `json:"isDelivered" db:"is_delivered"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
}

type Contact struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
}

type ContactInfo struct {
	Owner     Contact `json:"owner"`
	Requester Contact `json:"requester"`
}

type Role string

const (
	RoleOwner     Role = "owner"
	RoleRequester Role = "requester"
)

type ActionName string

const (
	ActionAccept  ActionName = "accept"
	ActionReject  ActionName = "reject"
	ActionDeliver ActionName = "deliver"
	ActionContact ActionName = "contact"
	ActionChat    ActionName = "chat"
)

type Action struct {
	Name    ActionName `json:"name"`
	Confirm bool       `json:"confirm,omitempty"`
}

type RequestCard struct {
	RequestView
	Role    Role     `json:"role"`
	Actions []Action `json:"actions"`
}

type Dashboard struct {
	Incoming []RequestCard `json:"incoming"`
	Outgoing []RequestCard `json:"outgoing"`
}

type Message struct {
	ID        uuid.UUID `json:"id" db:"id"`
	RequestID uuid.UUID `json:"requestId" db:"request_id"`
	SenderID  uuid.UUID `json:"senderId" db:"sender_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type SendMessageRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

type EventType string

const (
	EventCreated   EventType = "created"
	EventAccepted  EventType = "accepted"
	EventRejected  EventType = "rejected"
	EventDelivered EventType = "delivered"
)

type RequestEvent struct {
	RequestID uuid.UUID `json:"requestId" db:"request_id"`
	BookID    uuid.UUID `json:"bookId" db:"book_id"`
	ActorID   uuid.UUID `json:"actorId" db:"actor_id"`
	EventType EventType `json:"eventType" db:"event_type"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// Package domain defines the persistence models for the forum: users,
// questions and their tags, responses, comments, votes, and the chat
// invitation workflow. These types are mapped with GORM and form the core
// data layer of the application.
package domain

import (
	"time"
)

// Roles a user may hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Question statuses. A question starts as a draft and is either published or
// cancelled; both are terminal.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusCancelled = "cancelled"
)

// Question visibility, an admin-controlled axis independent of status.
const (
	VisibilityVisible = "visible"
	VisibilityHidden  = "hidden"
)

// Chat request statuses.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// Vote directions.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// User is a forum participant. Users are provisioned out of band and never
// deleted in normal flow.
//
// Fields:
//   - ID: auto-increment primary key.
//   - FirstName / LastName / DisplayName: name parts shown next to content.
//   - Role: "user" or "admin" (enforced by DB constraint).
//   - PasswordHash: credential hash, opaque to this service.
type User struct {
	ID           uint      `json:"id"           gorm:"primaryKey"`
	FirstName    string    `json:"first_name"   gorm:"type:varchar(100)"`
	LastName     string    `json:"last_name"    gorm:"type:varchar(100)"`
	DisplayName  string    `json:"display_name" gorm:"type:varchar(100);not null;uniqueIndex"`
	Role         string    `json:"role"         gorm:"type:varchar(16);not null;default:'user';check:role IN ('user','admin')"`
	PasswordHash string    `json:"-"            gorm:"type:varchar(255)"`
	CreatedAt    time.Time `json:"created_at"`

	// Tags are the topics this user follows.
	Tags []Tag `json:"-" gorm:"many2many:user_tags;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// Tag is an entry of the global tag catalog.
type Tag struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(64);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Tag.
func (Tag) TableName() string { return "tags" }

// Question is a user-authored question moving through the draft lifecycle.
//
// At most one draft per user exists at any time. The partial unique index
// ux_questions_one_draft covers only rows with status 'draft', so publishing
// or cancelling frees the slot.
type Question struct {
	ID         uint      `json:"id"         gorm:"primaryKey"`
	UserID     uint      `json:"user_id"    gorm:"not null;index:ux_questions_one_draft,unique,where:status = 'draft'"`
	Text       string    `json:"text"       gorm:"type:text;not null"`
	Status     string    `json:"status"     gorm:"type:varchar(16);not null;default:'draft';index;check:status IN ('draft','published','cancelled')"`
	Visibility string    `json:"visibility" gorm:"type:varchar(16);not null;default:'visible';check:visibility IN ('visible','hidden')"`
	Upvotes    int64     `json:"upvotes"    gorm:"not null;default:0"`
	Downvotes  int64     `json:"downvotes"  gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time `json:"updated_at"`

	User User  `json:"-"              gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Tags []Tag `json:"tags,omitempty" gorm:"many2many:question_tags;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for Question.
func (Question) TableName() string { return "questions" }

// Controversy is the ranking score used by the controversial view.
func (q Question) Controversy() int64 { return q.Downvotes - q.Upvotes }

// Timestamp is a (date, time) anchor minted once per response, comment, or
// chat message. Both parts are zero-padded so lexical order equals time order.
type Timestamp struct {
	ID   uint   `json:"-"    gorm:"primaryKey"`
	Date string `json:"date" gorm:"type:char(10);not null;index:idx_ts_date_time,priority:1"`
	Time string `json:"time" gorm:"type:char(15);not null;index:idx_ts_date_time,priority:2"`
}

// TableName returns the database table name for Timestamp.
func (Timestamp) TableName() string { return "timestamps" }

// NewTimestamp mints a timestamp anchor for t (converted to UTC).
func NewTimestamp(t time.Time) Timestamp {
	t = t.UTC()
	return Timestamp{
		Date: t.Format("2006-01-02"),
		Time: t.Format("15:04:05.000000"),
	}
}

// Response is a user's answer to a question. Each (user, question) pair has at
// most one response (ux_responses_user_question).
type Response struct {
	ID          uint      `json:"id"          gorm:"primaryKey"`
	UserID      uint      `json:"user_id"     gorm:"not null;uniqueIndex:ux_responses_user_question,priority:1"`
	QuestionID  uint      `json:"question_id" gorm:"not null;index;uniqueIndex:ux_responses_user_question,priority:2"`
	Text        string    `json:"text"        gorm:"type:text;not null"`
	Status      string    `json:"status"      gorm:"type:varchar(16);not null;default:'published'"`
	TimestampID uint      `json:"-"           gorm:"not null"`
	Timestamp   Timestamp `json:"timestamp"   gorm:"foreignKey:TimestampID;references:ID"`

	Question Question `json:"-" gorm:"foreignKey:QuestionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Response.
func (Response) TableName() string { return "responses" }

// Comment has the same shape as Response with an independent uniqueness axis:
// a user may hold one response and one comment on the same question.
type Comment struct {
	ID          uint      `json:"id"          gorm:"primaryKey"`
	UserID      uint      `json:"user_id"     gorm:"not null;uniqueIndex:ux_comments_user_question,priority:1"`
	QuestionID  uint      `json:"question_id" gorm:"not null;index;uniqueIndex:ux_comments_user_question,priority:2"`
	Text        string    `json:"text"        gorm:"type:text;not null"`
	Status      string    `json:"status"      gorm:"type:varchar(16);not null;default:'published'"`
	TimestampID uint      `json:"-"           gorm:"not null"`
	Timestamp   Timestamp `json:"timestamp"   gorm:"foreignKey:TimestampID;references:ID"`

	Question Question `json:"-" gorm:"foreignKey:QuestionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "comments" }

// Vote records that a user voted on a question and in which direction.
// The counters on Question stay the source for ranking; this row only
// guarantees one vote per (user, question).
type Vote struct {
	ID         uint      `json:"id"          gorm:"primaryKey"`
	UserID     uint      `json:"user_id"     gorm:"not null;uniqueIndex:ux_votes_user_question,priority:1"`
	QuestionID uint      `json:"question_id" gorm:"not null;index;uniqueIndex:ux_votes_user_question,priority:2"`
	Direction  string    `json:"direction"   gorm:"type:varchar(8);not null;check:direction IN ('up','down')"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Question Question `json:"-" gorm:"foreignKey:QuestionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Vote.
func (Vote) TableName() string { return "votes" }

// Chat is a named conversation created by a user.
type Chat struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null"`
	CreatorID uint      `json:"creator_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Chat.
func (Chat) TableName() string { return "chats" }

// ChatMember grants full membership of a chat to a user.
type ChatMember struct {
	ChatID    uint      `json:"chat_id"   gorm:"primaryKey"`
	UserID    uint      `json:"user_id"   gorm:"primaryKey;index"`
	JoinedAt  time.Time `json:"joined_at"`

	Chat Chat `json:"-" gorm:"foreignKey:ChatID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ChatMember.
func (ChatMember) TableName() string { return "chat_members" }

// ChatRequest is an invitation to join a chat. It is created pending and
// resolved once, by its addressee, to accepted or rejected.
type ChatRequest struct {
	ID         uint       `json:"id"           gorm:"primaryKey"`
	ChatID     uint       `json:"chat_id"      gorm:"not null;uniqueIndex:ux_chat_requests_chat_to,priority:1"`
	FromUserID uint       `json:"from_user_id" gorm:"not null"`
	ToUserID   uint       `json:"to_user_id"   gorm:"not null;index:idx_chat_requests_to_status,priority:1;uniqueIndex:ux_chat_requests_chat_to,priority:2"`
	Status     string     `json:"status"       gorm:"type:varchar(16);not null;default:'pending';index:idx_chat_requests_to_status,priority:2;check:status IN ('pending','accepted','rejected')"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	Chat Chat `json:"chat" gorm:"foreignKey:ChatID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ChatRequest.
func (ChatRequest) TableName() string { return "chat_requests" }

// ChatMessage is a message posted to a chat by one of its members.
type ChatMessage struct {
	ID          uint      `json:"id"        gorm:"primaryKey"`
	ChatID      uint      `json:"chat_id"   gorm:"not null;index"`
	SenderID    uint      `json:"sender_id" gorm:"not null"`
	Text        string    `json:"text"      gorm:"type:text;not null"`
	TimestampID uint      `json:"-"         gorm:"not null"`
	Timestamp   Timestamp `json:"timestamp" gorm:"foreignKey:TimestampID;references:ID"`

	Chat Chat `json:"-" gorm:"foreignKey:ChatID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }

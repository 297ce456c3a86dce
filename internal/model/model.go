package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventStatus string

const (
	StatusOpen      EventStatus = "Open"
	StatusClosed    EventStatus = "Closed"
	StatusCompleted EventStatus = "Completed"
)

func (s EventStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusCompleted:
		return true
	}
	return false
}

type Member struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MemberID    string    `gorm:"size:64;index" json:"memberId"`
	FullName    string    `gorm:"size:200" json:"fullName"`
	Address     string    `gorm:"size:300" json:"address"`
	PhoneNumber string    `gorm:"size:40" json:"phoneNumber"`
	Email       string    `gorm:"size:200" json:"email"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Program struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProgName  string    `gorm:"size:200;uniqueIndex" json:"progname"`
	Events    []Event   `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE" json:"progevent"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Event is owned by a Program; the catalog never reads it on its own.
type Event struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	ProgramID   uint        `gorm:"index" json:"programId"`
	EventName   string      `gorm:"size:200" json:"eventname"`
	EventDate   string      `gorm:"size:10" json:"eventdate"`
	EventDay    string      `gorm:"size:10" json:"eventday"`
	EventStatus EventStatus `gorm:"size:16;index;default:Open" json:"eventstatus"`
	CloseRSVP   string      `gorm:"column:close_rsvp;size:10" json:"closersvp"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type ProgramPick struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProgramName string    `gorm:"size:200;index" json:"program_name"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type EventPick struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventName string    `gorm:"size:200;index" json:"event_name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RsvpResponse copies the event fields at submission time. EventID is kept
// to look up the live status; with IdentityKey it allows one row per person
// and event.
type RsvpResponse struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	EventID        uint      `gorm:"uniqueIndex:idx_rsvp_event_identity,priority:1" json:"eventId"`
	ProgramName    string    `gorm:"size:200;index:idx_rsvp_prog_event" json:"programname"`
	EventName      string    `gorm:"size:200;index:idx_rsvp_prog_event" json:"eventname"`
	EventDate      string    `gorm:"size:10" json:"eventdate"`
	EventDay       string    `gorm:"size:10" json:"eventday"`
	MemberID       string    `gorm:"size:64" json:"memberId,omitempty"`
	MemName        string    `gorm:"size:200" json:"memname"`
	MemAddress     string    `gorm:"size:300" json:"memaddress"`
	MemPhoneNumber string    `gorm:"size:40" json:"memphonenumber"`
	MemEmail       string    `gorm:"size:200" json:"mememail"`
	RsvpCount      int       `json:"rsvpcount"`
	KidsRsvpCount  int       `json:"kidsrsvpcount"`
	RsvpConfNumber string    `gorm:"size:6;index" json:"rsvpconfnumber"`
	IdentityKey    string    `gorm:"size:260;uniqueIndex:idx_rsvp_event_identity,priority:2" json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type OutboxStatus string

const (
	OutboxReady     OutboxStatus = "READY"
	OutboxPublished OutboxStatus = "PUBLISHED"
)

type OutboxMessage struct {
	ID          uint           `gorm:"primaryKey"`
	Type        string         `gorm:"size:40;not null"`
	Key         string         `gorm:"size:200"`
	Payload     datatypes.JSON `gorm:"not null"`
	Status      OutboxStatus   `gorm:"size:16;not null;default:READY;index"`
	CreatedAt   time.Time
	PublishedAt *time.Time
}

func (Member) TableName() string        { return "members" }
func (Program) TableName() string       { return "programs" }
func (Event) TableName() string         { return "program_events" }
func (ProgramPick) TableName() string   { return "program_picks" }
func (EventPick) TableName() string     { return "event_picks" }
func (RsvpResponse) TableName() string  { return "rsvp_responses" }
func (OutboxMessage) TableName() string { return "outbox_messages" }

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Member{}, &Program{}, &Event{}, &ProgramPick{}, &EventPick{}, &RsvpResponse{}, &OutboxMessage{})
}

package model

import "time"

type NameRequest struct {
	ProgramName string `json:"program_name"`
	EventName   string `json:"event_name"`
}

type EventInput struct {
	EventName   string      `json:"eventname"`
	EventDate   string      `json:"eventdate"`
	EventDay    string      `json:"eventday"`
	EventStatus EventStatus `json:"eventstatus"`
	CloseRSVP   string      `json:"closersvp"`
}

type AddProgramRequest struct {
	ProgName string       `json:"progname"`
	Events   []EventInput `json:"progevent"`
}

type StatusRequest struct {
	EventStatus EventStatus `json:"eventstatus" binding:"required"`
}

type CompleteRequest struct {
	ProgramID uint `json:"programId" binding:"required"`
	EventID   uint `json:"eventId" binding:"required"`
}

// OpenEvent is one row of the flattened public event list.
type OpenEvent struct {
	ProgramID   uint   `gorm:"column:program_id" json:"programId"`
	EventID     uint   `gorm:"column:event_id" json:"eventId"`
	ProgramName string `gorm:"column:program_name" json:"programname"`
	EventName   string `gorm:"column:event_name" json:"eventname"`
	EventDate   string `gorm:"column:event_date" json:"eventdate"`
	EventDay    string `gorm:"column:event_day" json:"eventday"`
	CloseRSVP   string `gorm:"column:close_rsvp" json:"closersvp"`
}

type CompletedEvent struct {
	OpenEvent
	EventStatus EventStatus `gorm:"column:event_status" json:"eventstatus"`
	UpdatedAt   time.Time   `gorm:"column:updated_at" json:"updatedAt"`
}

type SearchMemberRequest struct {
	MemberID    string `json:"memberId"`
	Name        string `json:"name"`
	HouseNumber string `json:"houseNumber"`
}

type Identity struct {
	MemberID       string `json:"memberId"`
	MemName        string `json:"memname"`
	MemAddress     string `json:"memaddress"`
	MemPhoneNumber string `json:"memphonenumber"`
	MemEmail       string `json:"mememail"`
}

type EventSelection struct {
	ProgramName   string `json:"programname"`
	EventName     string `json:"eventname"`
	RsvpCount     int    `json:"rsvpcount"`
	KidsRsvpCount int    `json:"kidsrsvpcount"`
}

type SubmitRequest struct {
	Identity
	Events []EventSelection `json:"events"`
}

type SubmitResult struct {
	Message        string         `json:"message"`
	RsvpConfNumber string         `json:"rsvpconfnumber"`
	Responses      []RsvpResponse `json:"responses"`
}

type UpdateCountsRequest struct {
	RsvpConfNumber string `json:"rsvpconfnumber" binding:"required"`
	RsvpCount      int    `json:"rsvpcount"`
	KidsRsvpCount  int    `json:"kidsrsvpcount"`
}

// RsvpView is a ledger row plus the live state of its event.
type RsvpView struct {
	RsvpResponse
	EventStatus EventStatus `json:"eventstatus"`
	Editable    bool        `json:"editable"`
}

type ProgramEventRequest struct {
	ProgramName string `json:"programname" binding:"required"`
	EventName   string `json:"eventname" binding:"required"`
}

type ClearRequest struct {
	ProgramName string `json:"programname"`
	EventName   string `json:"eventname"`
}

type ClearResult struct {
	ProgramName string `json:"programname"`
	EventName   string `json:"eventname"`
	Deleted     int64  `json:"deleted"`
	Archived    bool   `json:"archived"`
}

type DashboardStat struct {
	ProgramName    string `gorm:"column:program_name" json:"programname"`
	EventName      string `gorm:"column:event_name" json:"eventname"`
	EventDate      string `gorm:"column:event_date" json:"eventdate"`
	EventDay       string `gorm:"column:event_day" json:"eventday"`
	TotalRSVPs     int    `gorm:"column:total_rsvps" json:"totalRSVPs"`
	TotalKids      int    `gorm:"column:total_kids" json:"totalKids"`
	TotalResponses int    `gorm:"column:total_responses" json:"totalResponses"`
}

type MemberDetail struct {
	MemName        string `gorm:"column:mem_name" json:"memname"`
	MemPhoneNumber string `gorm:"column:mem_phone_number" json:"memphonenumber"`
	RsvpCount      int    `gorm:"column:rsvp_count" json:"rsvpcount"`
	KidsRsvpCount  int    `gorm:"column:kids_rsvp_count" json:"kidsrsvpcount"`
}

type ImportPreview struct {
	Token   string   `json:"token"`
	Rows    int      `json:"rows"`
	Sample  []Member `json:"sample"`
	Replace bool     `json:"replace"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// ABOUTME: Data models for CRM entities
// ABOUTME: Defines Company, Contact, Deal, Activity, Task, Tag, and EmailTemplate structs
package models

import (
	"time"

	"github.com/google/uuid"
)

type Company struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Industry      string    `json:"industry,omitempty"`
	Website       string    `json:"website,omitempty"`
	Address       string    `json:"address,omitempty"`
	EmployeeCount *int      `json:"employeeCount,omitempty"`
	Memo          string    `json:"memo,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Contact struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Position  string     `json:"position,omitempty"`
	CompanyID *uuid.UUID `json:"companyId,omitempty"`
	Memo      string     `json:"memo,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type Deal struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	Amount            int64      `json:"amount"`
	Stage             DealStage  `json:"stage"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate,omitempty"`
	ContactID         *uuid.UUID `json:"contactId,omitempty"`
	CompanyID         *uuid.UUID `json:"companyId,omitempty"`
	Memo              string     `json:"memo,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Activity is a timeline record attached to at least one of
// contact, company, or deal.
type Activity struct {
	ID          uuid.UUID    `json:"id"`
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	ScheduledAt *time.Time   `json:"scheduledAt,omitempty"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	ContactID   *uuid.UUID   `json:"contactId,omitempty"`
	CompanyID   *uuid.UUID   `json:"companyId,omitempty"`
	DealID      *uuid.UUID   `json:"dealId,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Priority    TaskPriority `json:"priority"`
	IsCompleted bool         `json:"isCompleted"`
	ContactID   *uuid.UUID   `json:"contactId,omitempty"`
	CompanyID   *uuid.UUID   `json:"companyId,omitempty"`
	DealID      *uuid.UUID   `json:"dealId,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"` // hex: #RRGGBB
	CreatedAt time.Time `json:"createdAt"`
}

type EmailTemplate struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DealStage is the pipeline stage of a deal. The set is closed but there is
// no transition graph: any stage may move to any other stage.
type DealStage string

const (
	StageLead        DealStage = "lead"
	StageQualified   DealStage = "qualified"
	StageProposal    DealStage = "proposal"
	StageNegotiation DealStage = "negotiation"
	StageClosedWon   DealStage = "closed_won"
	StageClosedLost  DealStage = "closed_lost"
)

// DealStages lists all stages in pipeline order.
var DealStages = []DealStage{
	StageLead,
	StageQualified,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

// ValidStage reports whether s is a member of the closed stage set.
func ValidStage(s DealStage) bool {
	for _, stage := range DealStages {
		if s == stage {
			return true
		}
	}
	return false
}

type ActivityType string

const (
	ActivityCall    ActivityType = "call"
	ActivityEmail   ActivityType = "email"
	ActivityMeeting ActivityType = "meeting"
	ActivityNote    ActivityType = "note"
)

var ActivityTypes = []ActivityType{ActivityCall, ActivityEmail, ActivityMeeting, ActivityNote}

// ValidActivityType reports whether t is a known activity type.
func ValidActivityType(t ActivityType) bool {
	for _, at := range ActivityTypes {
		if t == at {
			return true
		}
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

var TaskPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}

// ValidPriority reports whether p is a known task priority.
func ValidPriority(p TaskPriority) bool {
	for _, tp := range TaskPriorities {
		if p == tp {
			return true
		}
	}
	return false
}

// HasParent reports whether the activity is linked to at least one of
// contact, company, or deal. The schema enforces the same constraint.
func (a *Activity) HasParent() bool {
	return a.ContactID != nil || a.CompanyID != nil || a.DealID != nil
}

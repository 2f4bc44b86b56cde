package model

import "time"

// DeletionSentinel is the legacy comment value that marked a request as a
// deletion before requests carried an explicit action.
const DeletionSentinel = "SUPPRESSION DEMANDÉE"

// RequestStatus is the state of a ModificationRequest. Pending is the only
// non-terminal state.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// Terminal reports whether s can no longer change.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// RequestAction is what an approved request does to the entry of its date.
type RequestAction string

const (
	ActionModify RequestAction = "modify"
	ActionDelete RequestAction = "delete"
)

// Valid reports whether a is a known action.
func (a RequestAction) Valid() bool {
	return a == ActionModify || a == ActionDelete
}

// ModificationRequest is a client proposal to create, change or delete the
// entry of one day. It is resolved exactly once by an admin.
type ModificationRequest struct {
	ID           string        `json:"id"`
	Date         Day           `json:"date"`
	StartTime    string        `json:"start_time"`
	EndTime      string        `json:"end_time"`
	Action       RequestAction `json:"action"`
	Comment      *string       `json:"comment"`
	Status       RequestStatus `json:"status"`
	CreatedBy    Role          `json:"created_by"`
	AdminComment *string       `json:"admin_comment"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// IsDeletion reports whether approving r removes the entry of its date.
// Requests stored before the action field existed are recognised by the
// legacy sentinel comment.
func (r ModificationRequest) IsDeletion() bool {
	if r.Action == ActionDelete {
		return true
	}
	return r.Action == "" && r.Comment != nil && *r.Comment == DeletionSentinel
}

package models

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Заявка на оплату вступительного взноса
type PaymentRequest struct {
	ID              string        `bson:"_id" json:"id"`
	MemberID        string        `bson:"memberId" json:"memberId"`
	SponsorID       string        `bson:"sponsorId,omitempty" json:"sponsorId,omitempty"`
	PaymentType     string        `bson:"paymentType" json:"paymentType"`
	Amount          int64         `bson:"amount" json:"amount"`
	TransactionID   string        `bson:"transactionId" json:"transactionId"`
	Status          RequestStatus `bson:"status" json:"status"`
	ApprovedBy      string        `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time    `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	AdminNotes      string        `bson:"adminNotes,omitempty" json:"adminNotes,omitempty"`
	RejectionReason string        `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt"`
}

// Заявка на вывод средств
type WithdrawalRequest struct {
	ID              string        `bson:"_id" json:"id"`
	MemberID        string        `bson:"memberId" json:"memberId"`
	Amount          int64         `bson:"amount" json:"amount"`
	Status          RequestStatus `bson:"status" json:"status"`
	ApprovedBy      string        `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time    `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	AdminNotes      string        `bson:"adminNotes,omitempty" json:"adminNotes,omitempty"`
	RejectionReason string        `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	// резерв суммы снят с WithdrawnTotal после отклонения
	Refunded        bool          `bson:"refunded,omitempty" json:"refunded,omitempty"`
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt"`
}

type PinStatus string

const (
	PinUnused   PinStatus = "unused"
	PinAssigned PinStatus = "assigned"
)

type Pin struct {
	ID          string     `bson:"_id" json:"id"`
	Code        string     `bson:"pinCode" json:"pinCode"`
	Status      PinStatus  `bson:"status" json:"status"`
	GeneratedBy string     `bson:"generatedBy" json:"generatedBy"`
	AssignedTo  string     `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	AssignedAt  *time.Time `bson:"assignedAt,omitempty" json:"assignedAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
}

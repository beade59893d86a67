package models

import (
	"time"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// ActiveApplicationStatuses are the statuses that block a new application to the same sponsor
var ActiveApplicationStatuses = []ApplicationStatus{ApplicationStatusPending, ApplicationStatusAccepted}

// Terminal reports whether no further transition is allowed from s
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusRejected
}

// Application is a driver's request to join a sponsor program
type Application struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	DriverID   uint              `gorm:"not null;index" json:"driver_id"`
	SponsorID  uint              `gorm:"not null;index" json:"sponsor_id"`
	AdID       *uint             `gorm:"index" json:"ad_id,omitempty"`
	Status     ApplicationStatus `gorm:"size:20;not null;default:pending;index;check:chk_applications_status,status IN ('pending', 'accepted', 'rejected')" json:"status"`
	AppliedAt  time.Time         `gorm:"autoCreateTime" json:"applied_at"`
	ReviewedAt *time.Time        `json:"reviewed_at,omitempty"`
	ReviewedBy *uint             `json:"reviewed_by,omitempty"`
	Notes      *string           `gorm:"type:text" json:"notes,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}

// ApplicationView is an application joined with the applying driver's account and profile
type ApplicationView struct {
	Application
	Email        string  `json:"email"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Phone        *string `json:"phone"`
	DOB          *string `gorm:"column:dob" json:"dob"`
	AddressLine1 *string `json:"address_line1,omitempty"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	PostalCode   *string `json:"postal_code,omitempty"`
	Country      *string `json:"country,omitempty"`
	CompanyName  *string `json:"company_name,omitempty"`
}

package models

// DriverSummary is a driver in a sponsor's organization together with their point balance
type DriverSummary struct {
	ID            uint    `json:"id"`
	Email         string  `json:"email"`
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	DOB           *string `gorm:"column:dob" json:"dob"`
	Phone         *string `json:"phone"`
	AddressLine1  *string `json:"address_line1"`
	AddressLine2  *string `json:"address_line2"`
	City          *string `json:"city"`
	State         *string `json:"state"`
	PostalCode    *string `json:"postal_code"`
	Country       *string `json:"country"`
	SponsorOrg    *string `json:"sponsor_org"`
	PointsBalance int64   `json:"points_balance"`
}

// SponsorSummary is a sponsor as shown in the driver-facing directory
type SponsorSummary struct {
	ID          uint    `json:"id"`
	Email       string  `json:"email"`
	CompanyName *string `json:"company_name"`
}

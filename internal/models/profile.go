package models

// ContactInfo holds the personal and address fields shared by every profile table.
// Nil pointers are stored as NULL.
type ContactInfo struct {
	FirstName    *string `gorm:"size:100" json:"first_name"`
	LastName     *string `gorm:"size:100" json:"last_name"`
	DOB          *string `gorm:"column:dob;size:10" json:"dob"` // YYYY-MM-DD
	Phone        *string `gorm:"size:25" json:"phone"`
	AddressLine1 *string `gorm:"size:255" json:"address_line1"`
	AddressLine2 *string `gorm:"size:255" json:"address_line2"`
	City         *string `gorm:"size:100" json:"city"`
	State        *string `gorm:"size:100" json:"state"`
	PostalCode   *string `gorm:"size:20" json:"postal_code"`
	Country      *string `gorm:"size:100" json:"country"`
}

// DriverProfile extends a driver user. SponsorOrg names the sponsor company the driver
// belongs to and is matched against SponsorProfile.CompanyName.
type DriverProfile struct {
	UserID uint `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ContactInfo
	SponsorOrg *string `gorm:"size:255;index" json:"sponsor_org"`
}

func (DriverProfile) TableName() string {
	return "driver_profiles"
}

// SponsorProfile extends a sponsor user
type SponsorProfile struct {
	UserID uint `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ContactInfo
	CompanyName *string `gorm:"size:255;index" json:"company_name"`
}

func (SponsorProfile) TableName() string {
	return "sponsor_profiles"
}

// AdminProfile extends an admin user
type AdminProfile struct {
	UserID uint `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ContactInfo
	DisplayName *string `gorm:"size:255" json:"display_name"`
}

func (AdminProfile) TableName() string {
	return "admin_profiles"
}

// ProfileFor returns an empty profile model for the given role, keyed by userID
func ProfileFor(role Role, userID uint) interface{} {
	switch role {
	case RoleDriver:
		return &DriverProfile{UserID: userID}
	case RoleSponsor:
		return &SponsorProfile{UserID: userID}
	case RoleAdmin:
		return &AdminProfile{UserID: userID}
	}
	return nil
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driver-rewards/internal/models"
)

func TestMeWithoutProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db)
	user := seedUser(t, db, "a@x.com", models.RoleAdmin)

	got, profile, err := svc.Me(ctx, user.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	assert.Nil(t, profile)

	_, _, err = svc.Me(ctx, user.ID, models.RoleDriver)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfileUpsertsAndKeepsUnsetFields(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db)
	user := seedUser(t, db, "d@x.com", models.RoleDriver)

	_, err := svc.UpdateProfile(ctx, user.ID, models.RoleDriver, ProfileUpdate{
		FirstName: strPtr("Dana"),
		Phone:     strPtr("555-0100"),
		Address:   strPtr("1 Main St"),
		DOB:       strPtr("1990-04-01"),
	})
	require.NoError(t, err)

	got, err := svc.UpdateProfile(ctx, user.ID, models.RoleDriver, ProfileUpdate{
		LastName:    strPtr("Driver"),
		CompanyName: strPtr("ignored for drivers"),
	})
	require.NoError(t, err)

	profile := got.(*models.DriverProfile)
	require.NotNil(t, profile.FirstName)
	assert.Equal(t, "Dana", *profile.FirstName)
	assert.Equal(t, "Driver", *profile.LastName)
	assert.Equal(t, "555-0100", *profile.Phone)
	assert.Equal(t, "1 Main St", *profile.AddressLine1)
	assert.Equal(t, "1990-04-01", *profile.DOB)
	assert.Nil(t, profile.SponsorOrg)
}

func TestUpdateProfileValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProfileService(db)
	user := seedUser(t, db, "s@x.com", models.RoleSponsor)

	tests := []struct {
		name  string
		patch ProfileUpdate
	}{
		{"dob format", ProfileUpdate{DOB: strPtr("04/01/1990")}},
		{"dob calendar", ProfileUpdate{DOB: strPtr("1990-13-40")}},
		{"phone short", ProfileUpdate{Phone: strPtr("12345")}},
		{"phone long", ProfileUpdate{Phone: strPtr("12345678901234567890123456")}},
		{"address short", ProfileUpdate{Address: strPtr("ab")}},
		{"empty name", ProfileUpdate{FirstName: strPtr("  ")}},
		{"empty company", ProfileUpdate{CompanyName: strPtr("")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateProfile(ctx, user.ID, models.RoleSponsor, tt.patch)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	var count int64
	db.Model(&models.SponsorProfile{}).Count(&count)
	assert.Zero(t, count)
}

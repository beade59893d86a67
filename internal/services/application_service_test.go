package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driver-rewards/internal/models"
)

func TestSubmitRejectsSecondActiveApplication(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db)
	driver := seedDriver(t, db, "d@x.com", nil)
	sponsor := seedSponsor(t, db, "s@x.com", "Acme")

	first, err := svc.Submit(ctx, driver.ID, sponsor.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPending, first.Status)

	_, err = svc.Submit(ctx, driver.ID, sponsor.ID, nil)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Review(ctx, first.ID, sponsor.ID, models.ApplicationStatusRejected, nil)
	require.NoError(t, err)

	second, err := svc.Submit(ctx, driver.ID, sponsor.ID, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSubmitConcurrentOnlyOneWins(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db)
	driver := seedDriver(t, db, "d@x.com", nil)
	sponsor := seedSponsor(t, db, "s@x.com", "Acme")

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(ctx, driver.ID, sponsor.ID, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)
}

func TestSubmitValidatesSponsorAndAd(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db)
	ads := NewAdService(db)
	driver := seedDriver(t, db, "d@x.com", nil)
	acme := seedSponsor(t, db, "a@x.com", "Acme")
	globex := seedSponsor(t, db, "g@x.com", "Globex")

	_, err := svc.Submit(ctx, driver.ID, driver.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound, "a driver is not a sponsor")

	_, err = svc.Submit(ctx, driver.ID, 9999, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	ad, err := ads.Create(ctx, globex.ID, AdInput{Title: "Night routes"})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, driver.ID, acme.ID, uintPtr(ad.ID))
	assert.ErrorIs(t, err, ErrNotFound, "ad must belong to the sponsor")

	app, err := svc.Submit(ctx, driver.ID, globex.ID, uintPtr(ad.ID))
	require.NoError(t, err)
	require.NotNil(t, app.AdID)
	assert.Equal(t, ad.ID, *app.AdID)
}

func TestReviewTransitions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db)
	driver := seedDriver(t, db, "d@x.com", nil)
	sponsor := seedSponsor(t, db, "s@x.com", "Acme")
	other := seedSponsor(t, db, "o@x.com", "Other")

	app, err := svc.Submit(ctx, driver.ID, sponsor.ID, nil)
	require.NoError(t, err)

	_, err = svc.Review(ctx, app.ID, other.ID, models.ApplicationStatusAccepted, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Review(ctx, app.ID, sponsor.ID, models.ApplicationStatusPending, nil)
	assert.ErrorIs(t, err, ErrValidation)

	reviewed, err := svc.Review(ctx, app.ID, sponsor.ID, models.ApplicationStatusAccepted, strPtr("welcome"))
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedAt)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, sponsor.ID, *reviewed.ReviewedBy)

	_, err = svc.Review(ctx, app.ID, sponsor.ID, models.ApplicationStatusRejected, nil)
	assert.ErrorIs(t, err, ErrConflict)

	got, err := svc.GetForSponsor(ctx, app.ID, sponsor.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, got.Status)
	assert.Equal(t, "d@x.com", got.Email)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "welcome", *got.Notes)
}

func TestAcceptSetsSponsorOrgAndRejectDoesNot(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db)
	affiliation := NewAffiliationService(db)
	acme := seedSponsor(t, db, "a@x.com", "Acme")
	globex := seedSponsor(t, db, "g@x.com", "Globex")

	// driver without a profile row
	driver := seedUser(t, db, "d@x.com", models.RoleDriver)

	rejected, err := svc.Submit(ctx, driver.ID, globex.ID, nil)
	require.NoError(t, err)
	_, err = svc.Review(ctx, rejected.ID, globex.ID, models.ApplicationStatusRejected, nil)
	require.NoError(t, err)

	_, ok, err := affiliation.ResolveSponsorForDriver(ctx, driver.ID)
	require.NoError(t, err)
	assert.False(t, ok, "rejection must not affiliate")

	accepted, err := svc.Submit(ctx, driver.ID, acme.ID, nil)
	require.NoError(t, err)
	_, err = svc.Review(ctx, accepted.ID, acme.ID, models.ApplicationStatusAccepted, nil)
	require.NoError(t, err)

	sponsorID, ok, err := affiliation.ResolveSponsorForDriver(ctx, driver.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, acme.ID, sponsorID)

	org := driverSponsorOrg(t, db, driver.ID)
	require.NotNil(t, org)
	assert.Equal(t, "Acme", *org)
}

func TestListApplications(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db)
	sponsor := seedSponsor(t, db, "s@x.com", "Acme")
	first := seedDriver(t, db, "one@x.com", nil)
	second := seedDriver(t, db, "two@x.com", nil)

	a1, err := svc.Submit(ctx, first.ID, sponsor.ID, nil)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, second.ID, sponsor.ID, nil)
	require.NoError(t, err)
	_, err = svc.Review(ctx, a1.ID, sponsor.ID, models.ApplicationStatusRejected, nil)
	require.NoError(t, err)

	all, err := svc.ListForSponsor(ctx, sponsor.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.ListForSponsor(ctx, sponsor.ID, models.ApplicationStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "two@x.com", pending[0].Email)

	mine, err := svc.ListForDriver(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].CompanyName)
	assert.Equal(t, "Acme", *mine[0].CompanyName)
	assert.Equal(t, models.ApplicationStatusRejected, mine[0].Status)
}

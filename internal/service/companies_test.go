package service_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenders/db"
	"tenders/internal/apperr"
	"tenders/internal/service"
)

func TestCompanySaveAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.signup(t, "a@x.com")

	saved, err := f.svc.Companies.Save(ctx, userID, service.CompanyInput{
		Name:             "  Acme  ",
		Industry:         strPtr("Tech"),
		GoodsAndServices: []string{"Bolts", " ", "Nuts"},
		GoodsProvided:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme", saved.Name)
	assert.Equal(t, []string{"Bolts", "Nuts"}, saved.GoodsAndServices)
	assert.Equal(t, f.svc.Companies.LogoURL(saved.ID), saved.LogoURL)

	public, err := f.svc.Companies.GetPublic(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Company, public.Company)
	assert.Equal(t, []string{"Bolts", "Nuts"}, public.GoodsAndServices)
	assert.Contains(t, public.LogoURL, strconv.Itoa(saved.ID)+".png")

	mine, err := f.svc.Companies.GetMine(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, mine.ID)
	assert.NotEmpty(t, mine.LogoURL)

	byUser, err := f.svc.Companies.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byUser.ID)
	assert.Empty(t, byUser.LogoURL)
}

func TestCompanyNameRequired(t *testing.T) {
	f := newFixture(t)
	userID := f.signup(t, "a@x.com")

	_, err := f.svc.Companies.Save(context.Background(), userID, service.CompanyInput{Name: "   "})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.From(err).Code)
}

func TestCompanyFieldLengths(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.signup(t, "a@x.com")
	long := strings.Repeat("x", 256)

	tests := []struct {
		name string
		in   service.CompanyInput
	}{
		{"name", service.CompanyInput{Name: long}},
		{"industry", service.CompanyInput{Name: "Acme", Industry: strPtr(long)}},
		{"goods item", service.CompanyInput{Name: "Acme", GoodsAndServices: []string{"ok", long}, GoodsProvided: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Companies.Save(ctx, userID, tt.in)
			require.Error(t, err)
			assert.Equal(t, 400, apperr.From(err).HTTPStatus())
		})
	}
	assert.Empty(t, f.store.CompanyIDsForUser(userID))

	_, err := f.svc.Companies.Save(ctx, userID, service.CompanyInput{Name: strings.Repeat("x", 255)})
	require.NoError(t, err)
}

func TestCompanyStoreRejectedValueIsValidation(t *testing.T) {
	f := newFixture(t)
	userID := f.signup(t, "a@x.com")
	f.store.Fail("CreateCompany", fmt.Errorf("%w: 22021 invalid byte sequence", db.ErrInvalidInput))

	_, err := f.svc.Companies.Save(context.Background(), userID, service.CompanyInput{Name: "Acme"})
	require.ErrorIs(t, err, apperr.ErrInvalidValue)
}

func TestCompanyNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.signup(t, "a@x.com")

	_, err := f.svc.Companies.GetPublic(ctx, 999)
	require.ErrorIs(t, err, apperr.ErrCompanyNotFound)

	_, err = f.svc.Companies.GetMine(ctx, userID)
	require.ErrorIs(t, err, apperr.ErrNoCompanyForUser)

	_, err = f.svc.Companies.GetByUserID(ctx, userID)
	require.ErrorIs(t, err, apperr.ErrNoCompanyForUser)
}

// Повторное сохранение создает вторую компанию, каноничной остается первая
func TestCompanySaveAlwaysCreates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := f.signup(t, "a@x.com")

	first, err := f.svc.Companies.Save(ctx, userID, service.CompanyInput{Name: "First"})
	require.NoError(t, err)
	second, err := f.svc.Companies.Save(ctx, userID, service.CompanyInput{Name: "Second"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, []int{first.ID, second.ID}, f.store.CompanyIDsForUser(userID))

	mine, err := f.svc.Companies.GetMine(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, mine.ID)
}

func TestCompanyGoodsOnlyWhenProvided(t *testing.T) {
	f := newFixture(t)
	userID := f.signup(t, "a@x.com")

	saved, err := f.svc.Companies.Save(context.Background(), userID, service.CompanyInput{
		Name:             "Acme",
		GoodsAndServices: []string{"ignored"},
	})
	require.NoError(t, err)
	assert.Empty(t, saved.GoodsAndServices)
	assert.Empty(t, f.store.Goods(saved.ID))
}

func TestCompanyDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ownerID, ownerCompany := f.company(t, "owner@x.com", "Owner")
	bidderID, bidderCompany := f.company(t, "bidder@x.com", "Bidder")

	tender, err := f.svc.Tenders.Create(ctx, ownerID, service.TenderInput{Title: strPtr("RFP")})
	require.NoError(t, err)
	_, err = f.svc.Applications.Submit(ctx, bidderID, tender.ID, strPtr("bid"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Companies.Delete(ctx, ownerID))

	_, err = f.svc.Companies.GetPublic(ctx, ownerCompany)
	require.ErrorIs(t, err, apperr.ErrCompanyNotFound)
	_, err = f.svc.Tenders.Get(ctx, tender.ID)
	require.ErrorIs(t, err, apperr.ErrTenderNotFound)
	assert.Zero(t, f.store.Applications(tender.ID, bidderCompany))

	// без компании изменения отклоняются как ошибка клиента
	_, err = f.svc.Tenders.Create(ctx, ownerID, service.TenderInput{Title: strPtr("Again")})
	require.ErrorIs(t, err, apperr.ErrNoCompany)
	assert.Equal(t, 400, apperr.From(err).HTTPStatus())
}

func TestUploadLogo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID, companyID := f.company(t, "a@x.com", "Acme")

	png := []byte{0x89, 'P', 'N', 'G'}
	url, err := f.svc.Companies.UploadLogo(ctx, userID, base64.StdEncoding.EncodeToString(png))
	require.NoError(t, err)
	assert.Equal(t, f.svc.Companies.LogoURL(companyID), url)
	assert.Equal(t, png, f.logos.objects[strconv.Itoa(companyID)+".png"])

	// data URL тоже принимается, логотип перезаписывается
	other := []byte("second")
	_, err = f.svc.Companies.UploadLogo(ctx, userID, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(other))
	require.NoError(t, err)
	assert.Equal(t, other, f.logos.objects[strconv.Itoa(companyID)+".png"])
}

func TestUploadLogoErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	noCompanyUser := f.signup(t, "none@x.com")
	userID, _ := f.company(t, "a@x.com", "Acme")

	_, err := f.svc.Companies.UploadLogo(ctx, noCompanyUser, "")
	require.ErrorIs(t, err, apperr.ErrMissingImage)

	_, err = f.svc.Companies.UploadLogo(ctx, noCompanyUser, "aGVsbG8=")
	require.ErrorIs(t, err, apperr.ErrNoCompany)

	_, err = f.svc.Companies.UploadLogo(ctx, userID, "%%%not-base64%%%")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeValidation, apperr.From(err).Code)

	f.logos.uploadErr = errors.New("bucket unavailable")
	_, err = f.svc.Companies.UploadLogo(ctx, userID, "aGVsbG8=")
	require.Error(t, err)
	assert.Equal(t, "Logo upload failed", apperr.From(err).Message)
	assert.Equal(t, 500, apperr.From(err).HTTPStatus())
}

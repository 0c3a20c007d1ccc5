package service

import (
	"context"
	"errors"

	"tenders/db"
	"tenders/internal/apperr"
)

// Resolver определяет компанию, которой владеет пользователь. Все изменения
// в рамках "своей компании" проходят через него, и id компании для проверки
// владения берется только отсюда, никогда из запроса клиента.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// OwnedCompany возвращает первую компанию пользователя; ok=false, если ее нет
func (r *Resolver) OwnedCompany(ctx context.Context, userID int) (companyID int, ok bool, err error) {
	companyID, err = r.store.FirstCompanyIDForUser(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, apperr.Upstream("Failed to resolve company", err)
	}
	return companyID, true, nil
}

// RequireOwnedCompany как OwnedCompany, но отсутствие компании это ErrNoCompany (400)
func (r *Resolver) RequireOwnedCompany(ctx context.Context, userID int) (int, error) {
	companyID, ok, err := r.OwnedCompany(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, apperr.ErrNoCompany
	}
	return companyID, nil
}

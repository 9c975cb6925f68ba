package services

import "storefront/models"

// 發出請求的使用者，由驗證中間件提供
type Actor struct {
	UserID uint
	Role   models.Role
}

func (a Actor) Authenticated() bool {
	return a.UserID != 0
}

func (a Actor) IsAdmin() bool {
	return a.Authenticated() && a.Role.IsAdmin()
}

func requireLogin(a Actor) error {
	if !a.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func requireAdmin(a Actor) error {
	if err := requireLogin(a); err != nil {
		return err
	}
	if !a.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

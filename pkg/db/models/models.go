package models

// All lists every persisted model, in dependency order. Used by the sqlite
// auto-migrate path and by tests.
func All() []any {
	return []any{
		&User{},
		&EmailVerificationToken{},
		&PasswordResetToken{},
		&Catalog{},
		&Category{},
		&Product{},
		&ProductSpec{},
		&PriceTier{},
	}
}

package model

// All lists every table in creation order.
func All() []any {
	return []any{
		&User{},
		&Clock{},
		&CommandHistory{},
		&UserConfig{},
		&Alias{},
		&TemporaryCredentials{},
	}
}

package model

// All lists every persisted model, for migrations.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Event{},
		&PaymentSubmission{},
		&Registration{},
		&PastEvent{},
	}
}

package repository

import (
	"gorm.io/gorm"
)

// Repos is the set of repositories bound to one database handle, either the
// pool or a single transaction.
type Repos struct {
	Users         *UserRepository
	Events        *EventRepository
	Payments      *PaymentRepository
	Registrations *RegistrationRepository
	PastEvents    *PastEventRepository
}

func NewRepos(db *gorm.DB) *Repos {
	return &Repos{
		Users:         NewUserRepository(db),
		Events:        NewEventRepository(db),
		Payments:      NewPaymentRepository(db),
		Registrations: NewRegistrationRepository(db),
		PastEvents:    NewPastEventRepository(db),
	}
}

// Transactor runs a function against repositories that share one transaction.
// Returning an error from fn rolls everything back.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithinTx(fn func(repos *Repos) error) error {
	return t.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepos(tx))
	})
}

package domain

import "context"

// Repo is the record store the core consumes
type Repo interface {
	// FindByID returns a perr NotFound error when id is not enrolled in class
	FindByID(ctx context.Context, class Class, id string) (Participant, error)
	// Insert returns a perr DuplicateKey error when id already exists in class
	Insert(ctx context.Context, p Participant) error
}

// AdminRepo adds the maintenance operations used by the admin CLI
type AdminRepo interface {
	Repo
	List(ctx context.Context, class Class) ([]Participant, error)
	Clear(ctx context.Context, class Class) (int64, error)
	Migrate(ctx context.Context) error
}

// ServicePort is the contract exposed to the transport
type ServicePort interface {
	Authenticate(ctx context.Context, class Class, id, secret string) AuthResult
	Enroll(ctx context.Context, class Class, id, displayName string, secret *string) (EnrollResult, error)
}

package shared

import (
	"github.com/google/uuid"
)

// BaseAggregateRoot is the consistency boundary root: it owns the
// optimistic-lock version and the event buffer drained after commit.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int           `gorm:"not null;default:1"`
	domainEvents []DomainEvent `gorm:"-"`
}

// NewBaseAggregateRoot returns a root at version 1 with an empty
// event buffer.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:   NewBaseEntity(),
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}

// GetVersion returns the optimistic-lock version.
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion bumps the version. Repositories call this right
// before a compare-and-set save.
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent buffers an event for publication after the
// enclosing transaction commits.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns the buffered events without draining them.
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents drops the buffer once events are published.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// OwnerAggregateRoot scopes an aggregate to the property owner it
// belongs to. Every row carries OwnerID and repositories only ever
// read rows for the requesting owner.
type OwnerAggregateRoot struct {
	BaseAggregateRoot
	OwnerID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// NewOwnerAggregateRoot returns a fresh root scoped to ownerID.
func NewOwnerAggregateRoot(ownerID uuid.UUID) OwnerAggregateRoot {
	return OwnerAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		OwnerID:           ownerID,
	}
}

// SetCreatedBy records the staff user who created the record.
func (o *OwnerAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	o.CreatedBy = &userID
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rentdesk/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// OwnerAggregateModel provides common persistence fields for owner-scoped
// aggregate roots. It extends AggregateModel with owner ID and creator info.
type OwnerAggregateModel struct {
	AggregateModel
	OwnerID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// FromDomainOwnerAggregateRoot populates OwnerAggregateModel from domain OwnerAggregateRoot
func (m *OwnerAggregateModel) FromDomainOwnerAggregateRoot(o shared.OwnerAggregateRoot) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OwnerID = o.OwnerID
	m.CreatedBy = o.CreatedBy
}

// PopulateOwnerAggregateRoot populates a domain OwnerAggregateRoot from persistence model
func (m *OwnerAggregateModel) PopulateOwnerAggregateRoot(o *shared.OwnerAggregateRoot) {
	o.BaseAggregateRoot.BaseEntity.ID = m.ID
	o.BaseAggregateRoot.BaseEntity.CreatedAt = m.CreatedAt
	o.BaseAggregateRoot.BaseEntity.UpdatedAt = m.UpdatedAt
	o.BaseAggregateRoot.Version = m.Version
	o.OwnerID = m.OwnerID
	o.CreatedBy = m.CreatedBy
}

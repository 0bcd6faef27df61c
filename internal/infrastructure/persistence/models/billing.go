package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	OwnerAggregateModel
	InvoiceNumber string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoices_number"`
	PropertyID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	UnitID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	TenantID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	Status        billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Items         []InvoiceItemModel    `gorm:"foreignKey:InvoiceID;references:ID"`
	Subtotal      decimal.Decimal       `gorm:"type:decimal(15,2);not null;default:0"`
	TaxAmount     decimal.Decimal       `gorm:"type:decimal(15,2);not null;default:0"`
	TotalAmount   decimal.Decimal       `gorm:"type:decimal(15,2);not null;default:0"`
	TaxRateID     *uuid.UUID            `gorm:"type:uuid"`
	DueDate       time.Time             `gorm:"not null;index"`
	Notes         string                `gorm:"type:text"`
	SentAt        *time.Time            `gorm:"index"`
	CancelledAt   *time.Time
	CancelReason  string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	invoice := &billing.Invoice{
		OwnerAggregateRoot: shared.OwnerAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			OwnerID:   m.OwnerID,
			CreatedBy: m.CreatedBy,
		},
		InvoiceNumber: m.InvoiceNumber,
		PropertyID:    m.PropertyID,
		UnitID:        m.UnitID,
		TenantID:      m.TenantID,
		Status:        m.Status,
		Subtotal:      m.Subtotal,
		TaxAmount:     m.TaxAmount,
		TotalAmount:   m.TotalAmount,
		TaxRateID:     m.TaxRateID,
		DueDate:       m.DueDate,
		Notes:         m.Notes,
		SentAt:        m.SentAt,
		CancelledAt:   m.CancelledAt,
		CancelReason:  m.CancelReason,
		Items:         make([]billing.InvoiceItem, len(m.Items)),
	}
	for i, item := range m.Items {
		invoice.Items[i] = *item.ToDomain()
	}
	return invoice
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainOwnerAggregateRoot(inv.OwnerAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.PropertyID = inv.PropertyID
	m.UnitID = inv.UnitID
	m.TenantID = inv.TenantID
	m.Status = inv.Status
	m.Subtotal = inv.Subtotal
	m.TaxAmount = inv.TaxAmount
	m.TotalAmount = inv.TotalAmount
	m.TaxRateID = inv.TaxRateID
	m.DueDate = inv.DueDate
	m.Notes = inv.Notes
	m.SentAt = inv.SentAt
	m.CancelledAt = inv.CancelledAt
	m.CancelReason = inv.CancelReason
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, item := range inv.Items {
		m.Items[i] = *InvoiceItemModelFromDomain(&item)
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice entity.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is the persistence model for the InvoiceItem entity.
type InvoiceItemModel struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	Type        billing.ItemType   `gorm:"type:varchar(20);not null"`
	Description string             `gorm:"type:varchar(500);not null"`
	Amount      decimal.Decimal    `gorm:"type:decimal(15,2);not null"`
	Status      billing.ItemStatus `gorm:"type:varchar(10);not null;default:'active'"`
	ReferenceID *uuid.UUID         `gorm:"type:uuid;index"`
	CreatedAt   time.Time          `gorm:"not null"`
	UpdatedAt   time.Time          `gorm:"not null"`
	VoidedAt    *time.Time
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem entity.
func (m *InvoiceItemModel) ToDomain() *billing.InvoiceItem {
	return &billing.InvoiceItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		Type:        m.Type,
		Description: m.Description,
		Amount:      m.Amount,
		Status:      m.Status,
		ReferenceID: m.ReferenceID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		VoidedAt:    m.VoidedAt,
	}
}

// InvoiceItemModelFromDomain creates a new persistence model from a domain InvoiceItem entity.
func InvoiceItemModelFromDomain(item *billing.InvoiceItem) *InvoiceItemModel {
	return &InvoiceItemModel{
		ID:          item.ID,
		InvoiceID:   item.InvoiceID,
		Type:        item.Type,
		Description: item.Description,
		Amount:      item.Amount,
		Status:      item.Status,
		ReferenceID: item.ReferenceID,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
		VoidedAt:    item.VoidedAt,
	}
}

// PaymentModel is the persistence model for the Payment aggregate root.
// Payment rows are append-only; there is no update path for them.
type PaymentModel struct {
	OwnerAggregateModel
	InvoiceID     *uuid.UUID            `gorm:"type:uuid;index"`
	PropertyID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	UnitID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	TenantID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal       `gorm:"type:decimal(15,2);not null"`
	PaymentDate   time.Time             `gorm:"not null;index"`
	Type          billing.PaymentType   `gorm:"type:varchar(10);not null"`
	Mode          billing.PaymentMode   `gorm:"type:varchar(10);not null"`
	Status        billing.PaymentStatus `gorm:"type:varchar(10);not null;default:'confirmed'"`
	TransactionID string                `gorm:"type:varchar(100);index"`
	Description   string                `gorm:"type:varchar(500)"`
	ReceiptURL    string                `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		OwnerAggregateRoot: shared.OwnerAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			OwnerID:   m.OwnerID,
			CreatedBy: m.CreatedBy,
		},
		InvoiceID:     m.InvoiceID,
		PropertyID:    m.PropertyID,
		UnitID:        m.UnitID,
		TenantID:      m.TenantID,
		Amount:        m.Amount,
		PaymentDate:   m.PaymentDate,
		Type:          m.Type,
		Mode:          m.Mode,
		Status:        m.Status,
		TransactionID: m.TransactionID,
		Description:   m.Description,
		ReceiptURL:    m.ReceiptURL,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainOwnerAggregateRoot(p.OwnerAggregateRoot)
	m.InvoiceID = p.InvoiceID
	m.PropertyID = p.PropertyID
	m.UnitID = p.UnitID
	m.TenantID = p.TenantID
	m.Amount = p.Amount
	m.PaymentDate = p.PaymentDate
	m.Type = p.Type
	m.Mode = p.Mode
	m.Status = p.Status
	m.TransactionID = p.TransactionID
	m.Description = p.Description
	m.ReceiptURL = p.ReceiptURL
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// TaxRateModel is the persistence model for the TaxRate entity.
type TaxRateModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	Name       string          `gorm:"type:varchar(100);not null"`
	Percentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	CreatedAt  time.Time       `gorm:"not null"`
	UpdatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TaxRateModel) TableName() string {
	return "tax_rates"
}

// ToDomain converts the persistence model to a domain TaxRate entity.
func (m *TaxRateModel) ToDomain() *billing.TaxRate {
	return &billing.TaxRate{
		ID:         m.ID,
		Name:       m.Name,
		Percentage: m.Percentage,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// TaxRateModelFromDomain creates a new persistence model from a domain TaxRate entity.
func TaxRateModelFromDomain(r *billing.TaxRate) *TaxRateModel {
	return &TaxRateModel{
		ID:         r.ID,
		Name:       r.Name,
		Percentage: r.Percentage,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// UtilityReadingModel is the persistence model for billable utility readings.
type UtilityReadingModel struct {
	ID          uuid.UUID              `gorm:"type:uuid;primary_key"`
	OwnerID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	UnitID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	TenantID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	Description string                 `gorm:"type:varchar(500);not null"`
	Amount      decimal.Decimal        `gorm:"type:decimal(15,2);not null"`
	Status      billing.BillableStatus `gorm:"type:varchar(10);not null;default:'pending';index"`
	CreatedAt   time.Time              `gorm:"not null"`
	UpdatedAt   time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UtilityReadingModel) TableName() string {
	return "utility_readings"
}

// ToDomain converts the persistence model to a domain BillableRecord.
func (m *UtilityReadingModel) ToDomain() *billing.BillableRecord {
	return &billing.BillableRecord{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Kind:        billing.BillableKindUtilityReading,
		UnitID:      m.UnitID,
		TenantID:    m.TenantID,
		Description: m.Description,
		Amount:      m.Amount,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// UtilityReadingModelFromDomain creates a new persistence model from a domain BillableRecord.
func UtilityReadingModelFromDomain(b *billing.BillableRecord) *UtilityReadingModel {
	return &UtilityReadingModel{
		ID:          b.ID,
		OwnerID:     b.OwnerID,
		UnitID:      b.UnitID,
		TenantID:    b.TenantID,
		Description: b.Description,
		Amount:      b.Amount,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// DepositRecordModel is the persistence model for billable deposit records.
type DepositRecordModel struct {
	ID          uuid.UUID              `gorm:"type:uuid;primary_key"`
	OwnerID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	UnitID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	TenantID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	Description string                 `gorm:"type:varchar(500);not null"`
	Amount      decimal.Decimal        `gorm:"type:decimal(15,2);not null"`
	Status      billing.BillableStatus `gorm:"type:varchar(10);not null;default:'pending';index"`
	CreatedAt   time.Time              `gorm:"not null"`
	UpdatedAt   time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DepositRecordModel) TableName() string {
	return "deposit_records"
}

// ToDomain converts the persistence model to a domain BillableRecord.
func (m *DepositRecordModel) ToDomain() *billing.BillableRecord {
	return &billing.BillableRecord{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Kind:        billing.BillableKindDepositRecord,
		UnitID:      m.UnitID,
		TenantID:    m.TenantID,
		Description: m.Description,
		Amount:      m.Amount,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// DepositRecordModelFromDomain creates a new persistence model from a domain BillableRecord.
func DepositRecordModelFromDomain(b *billing.BillableRecord) *DepositRecordModel {
	return &DepositRecordModel{
		ID:          b.ID,
		OwnerID:     b.OwnerID,
		UnitID:      b.UnitID,
		TenantID:    b.TenantID,
		Description: b.Description,
		Amount:      b.Amount,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// InvoiceSequenceModel backs the global invoice number counter.
// The table holds a single row that is incremented under a row lock.
type InvoiceSequenceModel struct {
	ID        int       `gorm:"primary_key"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceSequenceModel) TableName() string {
	return "invoice_sequence"
}

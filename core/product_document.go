package core

import "time"

// ProductDocumentStatus enumerates the lifecycle states of a product document.
type ProductDocumentStatus string

const (
	// ProductDocumentStatusProcessing is the initial state while specialists work.
	ProductDocumentStatusProcessing ProductDocumentStatus = "processing"
	// ProductDocumentStatusCompleted is the terminal success state.
	ProductDocumentStatusCompleted ProductDocumentStatus = "completed"
	// ProductDocumentStatusFailed is the terminal failure state.
	ProductDocumentStatusFailed ProductDocumentStatus = "failed"
)

// DefaultUserID is assigned to documents created without an explicit user.
const DefaultUserID = "default_user"

// ProductDocument is a product-brand "penetration" document artifact built by
// the orchestrator from aggregated specialist outputs.
//
// Completed and failed are terminal: no transition leaves either state.
// CompletedAt is set iff the status is completed.
type ProductDocument struct {
	ID              string                `json:"id"`
	ProductName     string                `json:"product_name"`
	DocumentContent string                `json:"document_content,omitempty"`
	BrandName       string                `json:"brand_name,omitempty"`
	ProductCategory string                `json:"product_category,omitempty"`
	PriceRange      string                `json:"price_range,omitempty"`
	TargetAudience  string                `json:"target_audience,omitempty"`
	Tags            []string              `json:"tags,omitempty"`
	Summary         string                `json:"summary,omitempty"`
	UserID          string                `json:"user_id"`
	Status          ProductDocumentStatus `json:"status"`
	FailureReason   string                `json:"failure_reason,omitempty"`
	CompletedAt     *time.Time            `json:"completed_at,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// NewProductDocument constructs a processing document with a generated id.
// The user id defaults to DefaultUserID when empty.
func NewProductDocument(productName, userID string) *ProductDocument {
	if userID == "" {
		userID = DefaultUserID
	}
	now := time.Now().UTC()
	return &ProductDocument{
		ID:          NewID(),
		ProductName: productName,
		UserID:      userID,
		Status:      ProductDocumentStatusProcessing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CompletionMetadata carries optional fields set alongside the document
// content when a document completes.
type CompletionMetadata struct {
	Summary        string
	Tags           []string
	BrandName      string
	TargetAudience string
}

// Complete transitions a processing document to completed, recording the
// aggregated document content and setting CompletedAt.
func (d *ProductDocument) Complete(documentContent string, md CompletionMetadata) error {
	if d.Status != ProductDocumentStatusProcessing {
		return NewStateError("product_document", d.ID, string(d.Status), string(ProductDocumentStatusCompleted))
	}
	now := time.Now().UTC()
	d.DocumentContent = documentContent
	if md.Summary != "" {
		d.Summary = md.Summary
	}
	if md.Tags != nil {
		d.Tags = append([]string(nil), md.Tags...)
	}
	if md.BrandName != "" {
		d.BrandName = md.BrandName
	}
	if md.TargetAudience != "" {
		d.TargetAudience = md.TargetAudience
	}
	d.Status = ProductDocumentStatusCompleted
	d.CompletedAt = &now
	d.UpdatedAt = now
	return nil
}

// Fail transitions a processing document to failed with the given reason.
func (d *ProductDocument) Fail(reason string) error {
	if d.Status != ProductDocumentStatusProcessing {
		return NewStateError("product_document", d.ID, string(d.Status), string(ProductDocumentStatusFailed))
	}
	d.Status = ProductDocumentStatusFailed
	d.FailureReason = reason
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// ProductDocumentUpdate carries a partial mutation: only non-nil fields are
// applied. Updates never change the status and are rejected once terminal.
type ProductDocumentUpdate struct {
	ProductName     *string
	DocumentContent *string
	BrandName       *string
	ProductCategory *string
	PriceRange      *string
	TargetAudience  *string
	Tags            []string
	Summary         *string
}

// ApplyUpdate mutates the provided fields on a processing document.
func (d *ProductDocument) ApplyUpdate(u ProductDocumentUpdate) error {
	if d.Status != ProductDocumentStatusProcessing {
		return NewStateError("product_document", d.ID, string(d.Status), string(d.Status))
	}
	if u.ProductName != nil {
		d.ProductName = *u.ProductName
	}
	if u.DocumentContent != nil {
		d.DocumentContent = *u.DocumentContent
	}
	if u.BrandName != nil {
		d.BrandName = *u.BrandName
	}
	if u.ProductCategory != nil {
		d.ProductCategory = *u.ProductCategory
	}
	if u.PriceRange != nil {
		d.PriceRange = *u.PriceRange
	}
	if u.TargetAudience != nil {
		d.TargetAudience = *u.TargetAudience
	}
	if u.Tags != nil {
		d.Tags = append([]string(nil), u.Tags...)
	}
	if u.Summary != nil {
		d.Summary = *u.Summary
	}
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// Clone returns a deep copy safe for concurrent divergence.
func (d *ProductDocument) Clone() *ProductDocument {
	cp := *d
	if d.CompletedAt != nil {
		t := *d.CompletedAt
		cp.CompletedAt = &t
	}
	cp.Tags = append([]string(nil), d.Tags...)
	return &cp
}

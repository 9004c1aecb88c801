package models

import (
	"time"

	"github.com/google/uuid"
)

// ContractType identifies a supported agreement template.
type ContractType string

const (
	ContractNDA         ContractType = "nda"
	ContractEmployment  ContractType = "employment"
	ContractContractor  ContractType = "contractor"
	ContractSLA         ContractType = "sla"
	ContractPartnership ContractType = "partnership"
	ContractSales       ContractType = "sales"
	ContractLease       ContractType = "lease"
	ContractMOU         ContractType = "mou"
	ContractNonCompete  ContractType = "noncompete"
)

// ContractRequest carries the inputs for contract generation.
type ContractRequest struct {
	PartyA       string       `json:"party_a"`
	PartyB       string       `json:"party_b"`
	Duration     string       `json:"duration"`
	Jurisdiction string       `json:"jurisdiction"`
	ContractType ContractType `json:"contract_type"`
	ClauseQuery  string       `json:"clause_query"`

	// Type-specific extras
	Position         string `json:"position"`
	PropertyAddress  string `json:"property_address"`
	GoodsDescription string `json:"goods_description"`
	Scope            string `json:"scope"`
}

// GeneratedContract is the result of the contract generation flow.
type GeneratedContract struct {
	ID          uuid.UUID `json:"id"`
	Content     string    `json:"contract"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}

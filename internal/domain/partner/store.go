package partner

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
)

// Store is a point of sale. Sale prices and sales orders are registered per store.
type Store struct {
	shared.BaseAggregateRoot
	Code      int
	LegalName string
	TradeName string
	CNPJ      string
}

// NewStore registers a store. The CNPJ is stored as its 14 digits.
func NewStore(code int, legalName, tradeName, cnpj string) (*Store, error) {
	return NewStoreWithID(uuid.Nil, code, legalName, tradeName, cnpj)
}

// NewStoreWithID is NewStore with a caller supplied ID (uuid.Nil generates one)
func NewStoreWithID(id uuid.UUID, code int, legalName, tradeName, cnpj string) (*Store, error) {
	if code <= 0 {
		return nil, shared.NewDomainError("INVALID_CODE", "Store code must be greater than zero")
	}
	legalName = strings.TrimSpace(legalName)
	if legalName == "" {
		return nil, shared.NewDomainError("INVALID_LEGAL_NAME", "Store legal name cannot be empty")
	}
	if len(legalName) > 200 {
		return nil, shared.NewDomainError("INVALID_LEGAL_NAME", "Store legal name cannot exceed 200 characters")
	}
	tradeName = strings.TrimSpace(tradeName)
	if tradeName == "" {
		tradeName = legalName
	}
	digits := onlyDigits(cnpj)
	if len(digits) != 14 {
		return nil, shared.NewDomainError("INVALID_CNPJ", "CNPJ must have 14 digits")
	}

	s := &Store{
		BaseAggregateRoot: shared.NewBaseAggregateRootWithID(id),
		Code:              code,
		LegalName:         legalName,
		TradeName:         tradeName,
		CNPJ:              digits,
	}
	s.AddDomainEvent(NewStoreRegisteredEvent(s))
	return s, nil
}

// DisplayName prefers the trade name
func (s *Store) DisplayName() string {
	if s.TradeName != "" {
		return s.TradeName
	}
	return s.LegalName
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

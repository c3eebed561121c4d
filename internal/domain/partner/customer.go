package partner

import (
	"strings"

	"github.com/google/uuid"
	"github.com/hexasamples/backend/internal/domain/shared"
)

// Customer is the person a sales order is made for
type Customer struct {
	shared.BaseAggregateRoot
	CPF  string
	Name string
}

// NewCustomer registers a customer. The CPF is stored as its 11 digits.
func NewCustomer(cpf, name string) (*Customer, error) {
	return NewCustomerWithID(uuid.Nil, cpf, name)
}

func NewCustomerWithID(id uuid.UUID, cpf, name string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	digits := onlyDigits(cpf)
	if len(digits) != 11 {
		return nil, shared.NewDomainError("INVALID_CPF", "CPF must have 11 digits")
	}

	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRootWithID(id),
		CPF:               digits,
		Name:              name,
	}
	c.AddDomainEvent(NewCustomerRegisteredEvent(c))
	return c, nil
}

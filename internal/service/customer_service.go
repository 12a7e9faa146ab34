package service

import (
	"context"
	"errors"

	"tillpoint/internal/dto"
	"tillpoint/internal/model"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
)

type CustomerService interface {
	Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error)
	List(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)
	PostPayment(ctx context.Context, id uuid.UUID, req dto.PostPaymentRequest) (*dto.CustomerResponse, error)
	CreditStatus(ctx context.Context, id uuid.UUID) (*CreditStatus, error)
}

type customerService struct {
	repos  repository.Repos
	credit CreditService
}

func NewCustomerService(repos repository.Repos, credit CreditService) CustomerService {
	return &customerService{repos: repos, credit: credit}
}

func (s *customerService) Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if req.CreditLimit.IsNegative() {
		return nil, newValidation("credit_limit cannot be negative")
	}

	c := &model.Customer{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		CreditLimit: req.CreditLimit,
		Active:      true,
	}
	if err := s.repos.Customers.Create(ctx, c); err != nil {
		return nil, persistence("create customer", err)
	}
	return customerToResponse(c), nil
}

func (s *customerService) GetByID(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	c, err := s.repos.Customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "customer", Ref: id.String()}
		}
		return nil, persistence("load customer", err)
	}
	return customerToResponse(c), nil
}

func (s *customerService) List(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	customers, total, err := s.repos.Customers.List(ctx, repository.CustomerFilter{
		Name:   filter.Name,
		Active: filter.Active,
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, persistence("list customers", err)
	}

	data := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		data = append(data, *customerToResponse(&customers[i]))
	}
	return &dto.CustomerListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *customerService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	if req.CreditLimit != nil && req.CreditLimit.IsNegative() {
		return nil, newValidation("credit_limit cannot be negative")
	}

	c, err := s.repos.Customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "customer", Ref: id.String()}
		}
		return nil, persistence("load customer", err)
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Phone != nil {
		c.Phone = req.Phone
	}
	if req.CreditLimit != nil {
		c.CreditLimit = *req.CreditLimit
	}
	if req.Active != nil {
		c.Active = *req.Active
	}

	if err := s.repos.Customers.Update(ctx, c); err != nil {
		return nil, persistence("update customer", err)
	}
	return customerToResponse(c), nil
}

// PostPayment opens its own scope; the credit service supplies the rules.
func (s *customerService) PostPayment(ctx context.Context, id uuid.UUID, req dto.PostPaymentRequest) (*dto.CustomerResponse, error) {
	var paid *model.Customer
	txErr := s.repos.Tx.Run(ctx, func(r repository.Repos) error {
		c, err := s.credit.PostPayment(ctx, r, id, req.Amount)
		if err != nil {
			return err
		}
		paid = c
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return customerToResponse(paid), nil
}

func (s *customerService) CreditStatus(ctx context.Context, id uuid.UUID) (*CreditStatus, error) {
	return s.credit.Status(ctx, s.repos, id)
}

func customerToResponse(c *model.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:            c.ID.String(),
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		CreditLimit:   c.CreditLimit,
		CreditBalance: c.CreditBalance,
		Active:        c.Active,
		CreatedAt:     c.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:     c.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

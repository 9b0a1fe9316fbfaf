package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/oci-dispatch/internal/models"
)

// ContractRepo reads the contracts table.
type ContractRepo struct {
	DB *sql.DB
}

// NewContractRepo returns a new ContractRepo.
func NewContractRepo(db *sql.DB) *ContractRepo {
	return &ContractRepo{DB: db}
}

const contractColumns = `id, contract_start, contract_end, amount, created_at`

// List returns contracts, newest start first. limit/offset for pagination.
func (r *ContractRepo) List(ctx context.Context, limit, offset int) ([]models.Contract, error) {
	query := `
		SELECT ` + contractColumns + `
		FROM contracts
		ORDER BY contract_start DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	return r.query(ctx, query, limit, offset)
}

// ActiveOn returns the contracts whose [contract_start, contract_end] range contains day.
func (r *ContractRepo) ActiveOn(ctx context.Context, day string) ([]models.Contract, error) {
	query := `
		SELECT ` + contractColumns + `
		FROM contracts
		WHERE contract_start <= $1::date AND contract_end >= $1::date
		ORDER BY contract_start, id
	`
	return r.query(ctx, query, day)
}

// GetByID returns one contract by id, or nil when it does not exist.
func (r *ContractRepo) GetByID(ctx context.Context, id int) (*models.Contract, error) {
	query := `
		SELECT ` + contractColumns + `
		FROM contracts
		WHERE id = $1
	`
	c, err := scanContract(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ContractRepo) query(ctx context.Context, query string, args ...any) ([]models.Contract, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *c)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (*models.Contract, error) {
	c := &models.Contract{}
	var created sql.NullTime
	if err := row.Scan(&c.ID, &c.ContractStart, &c.ContractEnd, &c.Amount, &created); err != nil {
		return nil, err
	}
	if created.Valid {
		t := created.Time
		c.CreatedAt = &t
	}
	return c, nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"papergen/internal/common"
	"papergen/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// AccountsKey holds the credential records of the blob-backed auth provider.
const AccountsKey = "papergen.accounts"

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByID(ctx context.Context, id string) (*model.Account, error)
}

// --- PostgreSQL ---

type pgAccountRepository struct {
	db *sql.DB
}

func NewPgAccountRepository(db *sql.DB) AccountRepository {
	return &pgAccountRepository{db: db}
}

func (r *pgAccountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `INSERT INTO users (id, email, hashed_password, display_picture_url)
	          VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, account.ID, account.Email, account.HashedPassword, account.DisplayPictureURL)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("account with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgAccountRepository.Create: %w", err)
	}
	return nil
}

func (r *pgAccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.findOne(ctx, "email", email)
}

func (r *pgAccountRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	return r.findOne(ctx, "id", id)
}

func (r *pgAccountRepository) findOne(ctx context.Context, column, value string) (*model.Account, error) {
	query := `SELECT id, email, hashed_password, display_picture_url, created_at, updated_at
	          FROM users WHERE ` + column + ` = $1`
	account := &model.Account{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&account.ID, &account.Email, &account.HashedPassword, &account.DisplayPictureURL, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgAccountRepository.findOne(%s): %w", column, err)
	}
	return account, nil
}

// --- Blob ---

// blobAccountRepository keeps every account in one JSON document keyed by id.
type blobAccountRepository struct {
	mu    sync.Mutex
	blobs BlobStore
}

func NewBlobAccountRepository(blobs BlobStore) AccountRepository {
	return &blobAccountRepository{blobs: blobs}
}

func (r *blobAccountRepository) load(ctx context.Context) (map[string]model.Account, error) {
	data, ok, err := r.blobs.Get(ctx, AccountsKey)
	if err != nil {
		return nil, fmt.Errorf("blobAccountRepository.load: %w", err)
	}
	accounts := map[string]model.Account{}
	if !ok || len(data) == 0 {
		return accounts, nil
	}
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("blobAccountRepository.load: %w", err)
	}
	return accounts, nil
}

func (r *blobAccountRepository) Create(ctx context.Context, account *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, existing := range accounts {
		if strings.EqualFold(existing.Email, account.Email) {
			return fmt.Errorf("account with given email already exists: %w", common.ErrConflict)
		}
	}
	accounts[account.ID] = *account

	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("blobAccountRepository.Create: %w", err)
	}
	return r.blobs.Put(ctx, AccountsKey, data)
}

func (r *blobAccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		if strings.EqualFold(account.Email, email) {
			found := account
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *blobAccountRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	account, ok := accounts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &account, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mailpilot/internal/model"
	"mailpilot/internal/repository"

	_ "github.com/lib/pq"
)

type PostgresAccountRepository struct {
	db *sql.DB
}

func NewPostgresAccountRepository(db *sql.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func (r *PostgresAccountRepository) Create(ctx context.Context, account *model.MailAccount) error {
	query := `
		INSERT INTO mail_accounts (id, owner_id, email, access_token, refresh_token, last_sync_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			updated_at = NOW()`
	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.OwnerID, account.Email,
		account.AccessToken, account.RefreshToken, account.LastSyncAt,
		account.CreatedAt, account.UpdatedAt)
	return err
}

func (r *PostgresAccountRepository) FindByID(ctx context.Context, id string) (*model.MailAccount, error) {
	query := `SELECT id, owner_id, email, access_token, refresh_token, last_sync_at, created_at, updated_at FROM mail_accounts WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresAccountRepository) FindByEmail(ctx context.Context, email string) (*model.MailAccount, error) {
	query := `SELECT id, owner_id, email, access_token, refresh_token, last_sync_at, created_at, updated_at FROM mail_accounts WHERE email = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresAccountRepository) FindByOwnerID(ctx context.Context, ownerID string) ([]*model.MailAccount, error) {
	query := `SELECT id, owner_id, email, access_token, refresh_token, last_sync_at, created_at, updated_at FROM mail_accounts WHERE owner_id = $1`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (r *PostgresAccountRepository) FindAll(ctx context.Context) ([]*model.MailAccount, error) {
	query := `SELECT id, owner_id, email, access_token, refresh_token, last_sync_at, created_at, updated_at FROM mail_accounts`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (r *PostgresAccountRepository) Update(ctx context.Context, account *model.MailAccount) error {
	query := `
		UPDATE mail_accounts SET owner_id=$1, email=$2, access_token=$3,
		refresh_token=$4, last_sync_at=$5, updated_at=NOW() WHERE id=$6`
	_, err := r.db.ExecContext(ctx, query,
		account.OwnerID, account.Email, account.AccessToken,
		account.RefreshToken, account.LastSyncAt, account.ID)
	return err
}

func (r *PostgresAccountRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM mail_accounts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func scanAccount(row *sql.Row) (*model.MailAccount, error) {
	account := &model.MailAccount{}
	var lastSync sql.NullTime
	err := row.Scan(
		&account.ID, &account.OwnerID, &account.Email,
		&account.AccessToken, &account.RefreshToken, &lastSync,
		&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if lastSync.Valid {
		t := lastSync.Time
		account.LastSyncAt = &t
	}
	return account, nil
}

func collectAccounts(rows *sql.Rows) ([]*model.MailAccount, error) {
	var accounts []*model.MailAccount
	for rows.Next() {
		account := &model.MailAccount{}
		var lastSync sql.NullTime
		err := rows.Scan(
			&account.ID, &account.OwnerID, &account.Email,
			&account.AccessToken, &account.RefreshToken, &lastSync,
			&account.CreatedAt, &account.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if lastSync.Valid {
			t := lastSync.Time
			account.LastSyncAt = &t
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// Postgres Category repository implementation
type PostgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

func (r *PostgresCategoryRepository) Create(ctx context.Context, category *model.Category) error {
	query := `
		INSERT INTO categories (id, owner_id, name, description, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			color = EXCLUDED.color,
			updated_at = NOW()`
	_, err := r.db.ExecContext(ctx, query,
		category.ID, category.OwnerID, category.Name, category.Description,
		category.Color, category.CreatedAt, category.UpdatedAt)
	return err
}

func (r *PostgresCategoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	query := `SELECT id, owner_id, name, description, color, created_at, updated_at FROM categories WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	category := &model.Category{}
	err := row.Scan(
		&category.ID, &category.OwnerID, &category.Name, &category.Description,
		&category.Color, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return category, nil
}

func (r *PostgresCategoryRepository) FindByOwnerID(ctx context.Context, ownerID string) ([]*model.Category, error) {
	query := `SELECT id, owner_id, name, description, color, created_at, updated_at FROM categories WHERE owner_id = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		category := &model.Category{}
		err := rows.Scan(
			&category.ID, &category.OwnerID, &category.Name, &category.Description,
			&category.Color, &category.CreatedAt, &category.UpdatedAt)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *PostgresCategoryRepository) Update(ctx context.Context, category *model.Category) error {
	query := `
		UPDATE categories SET name=$1, description=$2, color=$3, updated_at=NOW() WHERE id=$4`
	_, err := r.db.ExecContext(ctx, query,
		category.Name, category.Description, category.Color, category.ID)
	return err
}

func (r *PostgresCategoryRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM categories WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// Postgres Message repository implementation
type PostgresMessageRepository struct {
	db *sql.DB
}

func NewPostgresMessageRepository(db *sql.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

const messageColumns = `id, account_id, owner_id, category_id, thread_id, subject, sender, snippet, html_body, clean_text_body, summary, received_at, is_read, created_at, updated_at`

func (r *PostgresMessageRepository) Create(ctx context.Context, message *model.Message) error {
	query := `
		INSERT INTO messages (` + messageColumns + `)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query,
		message.ID, message.AccountID, message.OwnerID, message.CategoryID,
		message.ThreadID, message.Subject, message.Sender, message.Snippet,
		message.HTMLBody, message.CleanTextBody, message.Summary,
		message.ReceivedAt, message.IsRead, message.CreatedAt, message.UpdatedAt)
	return err
}

func (r *PostgresMessageRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM messages WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *PostgresMessageRepository) FindByID(ctx context.Context, id string) (*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	message, err := scanMessage(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return message, nil
}

func (r *PostgresMessageRepository) FindByAccountID(ctx context.Context, accountID string) ([]*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE account_id = $1 ORDER BY received_at DESC`
	return r.queryMessages(ctx, query, accountID)
}

func (r *PostgresMessageRepository) FindByOwnerID(ctx context.Context, ownerID string) ([]*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE owner_id = $1 ORDER BY received_at DESC`
	return r.queryMessages(ctx, query, ownerID)
}

func (r *PostgresMessageRepository) FindByCategoryID(ctx context.Context, categoryID string) ([]*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE category_id = $1 ORDER BY received_at DESC`
	return r.queryMessages(ctx, query, categoryID)
}

func (r *PostgresMessageRepository) UpdateCategory(ctx context.Context, id, categoryID string) error {
	query := `UPDATE messages SET category_id = NULLIF($1, ''), updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, categoryID, id)
	return err
}

func (r *PostgresMessageRepository) Update(ctx context.Context, message *model.Message) error {
	query := `
		UPDATE messages SET category_id=NULLIF($1, ''), summary=$2, is_read=$3, updated_at=NOW() WHERE id=$4`
	_, err := r.db.ExecContext(ctx, query,
		message.CategoryID, message.Summary, message.IsRead, message.ID)
	return err
}

func (r *PostgresMessageRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM messages WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *PostgresMessageRepository) queryMessages(ctx context.Context, query string, arg any) ([]*model.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		message, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

func scanMessage(scan func(dest ...any) error) (*model.Message, error) {
	message := &model.Message{}
	var categoryID sql.NullString
	err := scan(
		&message.ID, &message.AccountID, &message.OwnerID, &categoryID,
		&message.ThreadID, &message.Subject, &message.Sender, &message.Snippet,
		&message.HTMLBody, &message.CleanTextBody, &message.Summary,
		&message.ReceivedAt, &message.IsRead, &message.CreatedAt, &message.UpdatedAt)
	if err != nil {
		return nil, err
	}
	message.CategoryID = categoryID.String
	return message, nil
}

// InitializeDatabase creates the necessary tables
func InitializeDatabase(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS mail_accounts (
			id VARCHAR(255) PRIMARY KEY,
			owner_id VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			access_token TEXT,
			refresh_token TEXT,
			last_sync_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id VARCHAR(255) PRIMARY KEY,
			owner_id VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			color VARCHAR(32),
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id VARCHAR(255) PRIMARY KEY,
			account_id VARCHAR(255) NOT NULL REFERENCES mail_accounts(id) ON DELETE CASCADE,
			owner_id VARCHAR(255) NOT NULL,
			category_id VARCHAR(255) REFERENCES categories(id) ON DELETE SET NULL,
			thread_id VARCHAR(255),
			subject TEXT NOT NULL,
			sender TEXT,
			snippet TEXT,
			html_body TEXT,
			clean_text_body TEXT,
			summary TEXT,
			received_at TIMESTAMP NOT NULL,
			is_read BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

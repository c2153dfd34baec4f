package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/xaenox/marketwatch/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db}

	// Initialize database schema
	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStorage) RecordFingerprint(ctx context.Context, conversationID, fingerprint string, seenAt time.Time) error {
	query := `
		INSERT INTO message_fingerprints (fingerprint, conversation_id, seen_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (fingerprint) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, query, fingerprint, conversationID, seenAt); err != nil {
		return fmt.Errorf("error recording fingerprint: %v", err)
	}
	return nil
}

func (s *PostgresStorage) ListFingerprints(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fingerprint FROM message_fingerprints`)
	if err != nil {
		return nil, fmt.Errorf("error querying fingerprints: %v", err)
	}
	defer rows.Close()

	var fingerprints []string
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("error scanning fingerprint: %v", err)
		}
		fingerprints = append(fingerprints, fp)
	}

	return fingerprints, rows.Err()
}

func (s *PostgresStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (
			id, conversation_id, sender_name, account_email, content,
			message_type, status, contains_question, contains_price_inquiry,
			contains_availability_inquiry, requires_human_attention,
			ai_confidence, response_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			ai_confidence = EXCLUDED.ai_confidence,
			response_time = EXCLUDED.response_time`

	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.ConversationID,
		msg.SenderName,
		msg.AccountEmail,
		msg.Content,
		msg.Type,
		msg.Status,
		msg.Flags.ContainsQuestion,
		msg.Flags.ContainsPriceInquiry,
		msg.Flags.ContainsAvailabilityInquiry,
		msg.Flags.RequiresHumanAttention,
		msg.AIConfidence,
		msg.ResponseTime,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving message: %v", err)
	}

	return nil
}

func (s *PostgresStorage) MessagesByConversation(ctx context.Context, conversationID string, limit int) ([]*models.Message, error) {
	query := `
		SELECT id, conversation_id, sender_name, account_email, content,
			message_type, status, contains_question, contains_price_inquiry,
			contains_availability_inquiry, requires_human_attention,
			ai_confidence, response_time, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %v", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg := &models.Message{}
		err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.SenderName,
			&msg.AccountEmail,
			&msg.Content,
			&msg.Type,
			&msg.Status,
			&msg.Flags.ContainsQuestion,
			&msg.Flags.ContainsPriceInquiry,
			&msg.Flags.ContainsAvailabilityInquiry,
			&msg.Flags.RequiresHumanAttention,
			&msg.AIConfidence,
			&msg.ResponseTime,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning message: %v", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %v", err)
	}

	// Reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (s *PostgresStorage) ListUsableAccounts(ctx context.Context) ([]models.Account, error) {
	query := `
		SELECT email, usable, daily_messages, last_activity
		FROM accounts
		WHERE usable = TRUE
		ORDER BY email`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying accounts: %v", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.Email, &account.Usable, &account.DailyMessages, &account.LastActivity); err != nil {
			return nil, fmt.Errorf("error scanning account: %v", err)
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func (s *PostgresStorage) ListProducts(ctx context.Context) ([]models.Product, error) {
	query := `
		SELECT id, title, description, price, condition
		FROM products
		ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying products: %v", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		if err := rows.Scan(&product.ID, &product.Title, &product.Description, &product.Price, &product.Condition); err != nil {
			return nil, fmt.Errorf("error scanning product: %v", err)
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

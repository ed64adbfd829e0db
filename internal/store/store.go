// Package store persists conversations, messages and document analysis
// history in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store handles queries to the SQLite conversation database
type Store struct {
	db *sql.DB
}

// NewStore opens the database and ensures the schema exists
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (conversation_id) REFERENCES conversations(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation
			ON messages(conversation_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS analysis_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_document
			ON analysis_history(document_id, created_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// ConversationRecord represents a stored conversation
type ConversationRecord struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageRecord represents a stored message
type MessageRecord struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateConversation inserts a conversation and returns its id
func (s *Store) CreateConversation(ctx context.Context, ownerID, title string) (string, error) {
	id := fmt.Sprintf("conv_%d", time.Now().UnixNano())

	query := `INSERT INTO conversations (id, owner_id, title) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, id, ownerID, title); err != nil {
		return "", fmt.Errorf("failed to insert conversation: %w", err)
	}

	return id, nil
}

// GetConversation returns a conversation by id, or nil when not found
func (s *Store) GetConversation(ctx context.Context, id string) (*ConversationRecord, error) {
	query := `SELECT id, owner_id, title, created_at, updated_at FROM conversations WHERE id = ?`

	var rec ConversationRecord
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.OwnerID, &rec.Title, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan conversation: %w", err)
	}

	return &rec, nil
}

// ListConversations returns all conversations for an owner, most recent first
func (s *Store) ListConversations(ctx context.Context, ownerID string) ([]ConversationRecord, error) {
	query := `SELECT id, owner_id, title, created_at, updated_at
		FROM conversations WHERE owner_id = ? ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var records []ConversationRecord
	for rows.Next() {
		var rec ConversationRecord
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Title, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}

	return records, nil
}

// AppendMessage stores a message and touches the conversation timestamp
func (s *Store) AppendMessage(ctx context.Context, conversationID, role, content string) error {
	query := `INSERT INTO messages (conversation_id, role, content) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, conversationID, role, content); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	touch := `UPDATE conversations SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, touch, conversationID); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}

	return nil
}

// LoadMessages returns the messages of a conversation in chronological order
func (s *Store) LoadMessages(ctx context.Context, conversationID string) ([]MessageRecord, error) {
	query := `SELECT role, content, created_at FROM messages
		WHERE conversation_id = ? ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []MessageRecord
	for rows.Next() {
		var msg MessageRecord
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// AppendAnalysisHistory records an analysis payload for a document
func (s *Store) AppendAnalysisHistory(ctx context.Context, documentID string, payload []byte) error {
	query := `INSERT INTO analysis_history (document_id, payload) VALUES (?, ?)`
	if _, err := s.db.ExecContext(ctx, query, documentID, string(payload)); err != nil {
		return fmt.Errorf("failed to insert analysis history: %w", err)
	}
	return nil
}

// CountAnalysisHistory returns the number of history rows for a document
func (s *Store) CountAnalysisHistory(ctx context.Context, documentID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM analysis_history WHERE document_id = ?`
	if err := s.db.QueryRowContext(ctx, query, documentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count analysis history: %w", err)
	}
	return count, nil
}

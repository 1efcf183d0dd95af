package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/sentimentscope/backend/internal/storage/models"
	"github.com/sentimentscope/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);

	CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		platform TEXT NOT NULL,
		content TEXT NOT NULL,
		sentiment TEXT NOT NULL,
		purchase_intent INTEGER NOT NULL,
		category TEXT,
		entities TEXT,
		topics TEXT,
		keywords TEXT,
		summary TEXT,
		trend_score REAL,
		user_id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_comments_user ON comments(user_id);
	CREATE INDEX IF NOT EXISTS idx_comments_platform ON comments(platform);

	CREATE TABLE IF NOT EXISTS analysis_history (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		platform TEXT NOT NULL,
		positive_percent REAL NOT NULL,
		negative_percent REAL NOT NULL,
		purchase_intent_percent REAL NOT NULL,
		total_comments INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_history_user ON analysis_history(user_id);
	CREATE INDEX IF NOT EXISTS idx_history_created ON analysis_history(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) CreateUser(user *models.User) error {
	query := `INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`

	_, err := c.db.Exec(query, user.ID, user.Username, user.PasswordHash, user.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("User created", zap.String("username", user.Username))
	return nil
}

func (c *Client) GetUserByUsername(username string) (*models.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`

	var user models.User
	var createdAt int64

	err := c.db.QueryRow(query, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.CreatedAt = time.Unix(createdAt, 0)
	return &user, nil
}

func (c *Client) GetUserByID(id string) (*models.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`

	var user models.User
	var createdAt int64

	err := c.db.QueryRow(query, id).Scan(&user.ID, &user.Username, &user.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.CreatedAt = time.Unix(createdAt, 0)
	return &user, nil
}

func (c *Client) InsertComment(comment *models.Comment) error {
	entitiesJSON := marshalNullable(comment.Entities)
	topicsJSON := marshalNullable(comment.Topics)
	keywordsJSON := marshalNullable(comment.Keywords)

	query := `
		INSERT INTO comments (id, platform, content, sentiment, purchase_intent,
			category, entities, topics, keywords, summary, trend_score, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	purchaseIntent := 0
	if comment.PurchaseIntent {
		purchaseIntent = 1
	}

	_, err := c.db.Exec(
		query,
		comment.ID,
		comment.Platform,
		comment.Content,
		string(comment.Sentiment),
		purchaseIntent,
		comment.Category,
		entitiesJSON,
		topicsJSON,
		keywordsJSON,
		comment.Summary,
		comment.TrendScore,
		comment.UserID,
		comment.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	logger.Debug("Comment inserted",
		zap.String("comment_id", comment.ID),
		zap.String("platform", comment.Platform),
		zap.String("sentiment", string(comment.Sentiment)),
	)
	return nil
}

func (c *Client) InsertAnalysisRun(run *models.AnalysisRun) error {
	query := `
		INSERT INTO analysis_history (id, url, platform, positive_percent, negative_percent,
			purchase_intent_percent, total_comments, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		run.ID,
		run.URL,
		run.Platform,
		run.PositivePercent,
		run.NegativePercent,
		run.PurchaseIntentPercent,
		run.TotalComments,
		run.UserID,
		run.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert analysis run: %w", err)
	}

	logger.Info("Analysis run recorded",
		zap.String("run_id", run.ID),
		zap.String("platform", run.Platform),
		zap.Int("total_comments", run.TotalComments),
	)
	return nil
}

// GetAnalysisHistory returns a user's runs newest-first.
func (c *Client) GetAnalysisHistory(userID string, limit int) ([]models.AnalysisRun, error) {
	query := `
		SELECT id, url, platform, positive_percent, negative_percent,
			purchase_intent_percent, total_comments, created_at
		FROM analysis_history
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis history: %w", err)
	}
	defer rows.Close()

	var runs []models.AnalysisRun
	for rows.Next() {
		var r models.AnalysisRun
		var createdAt int64

		err := rows.Scan(
			&r.ID,
			&r.URL,
			&r.Platform,
			&r.PositivePercent,
			&r.NegativePercent,
			&r.PurchaseIntentPercent,
			&r.TotalComments,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.UserID = userID
		r.CreatedAt = time.Unix(createdAt, 0).UTC()
		runs = append(runs, r)
	}

	return runs, nil
}

func marshalNullable(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sqlc-dev/pqtype"

	"recipebox/internal/model"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a row with the same key already exists.
	ErrConflict = errors.New("already exists")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Store persists recipes, meal plans and the extraction log in Postgres.
// Recipes and plans are stored as JSONB documents next to the columns used
// for ordering.
type Store struct {
	DB *sql.DB
}

// New creates a new Store that uses a shared *sql.DB with pooling.
func New(database *sql.DB) *Store {
	return &Store{DB: database}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// InsertRecipe stores a new recipe.
func (s *Store) InsertRecipe(ctx context.Context, r model.Recipe) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO recipes (id, created_at, updated_at, title_english, rating, document)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.CreatedAt, r.UpdatedAt, r.TitleEnglish, nullInt(r.Rating), doc)
	if isUniqueViolation(err) {
		return fmt.Errorf("insert recipe %s: %w", r.ID, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}
	return nil
}

// UpdateRecipe replaces a stored recipe, refreshing UpdatedAt and keeping
// the original CreatedAt.
func (s *Store) UpdateRecipe(ctx context.Context, r model.Recipe, now time.Time) (model.Recipe, error) {
	existing, err := s.GetRecipe(ctx, r.ID)
	if err != nil {
		return model.Recipe{}, err
	}
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = now

	doc, err := json.Marshal(r)
	if err != nil {
		return model.Recipe{}, err
	}
	res, err := s.DB.ExecContext(ctx, `
		UPDATE recipes
		SET updated_at = $2, title_english = $3, rating = $4, document = $5
		WHERE id = $1`,
		r.ID, r.UpdatedAt, r.TitleEnglish, nullInt(r.Rating), doc)
	if err != nil {
		return model.Recipe{}, fmt.Errorf("update recipe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Recipe{}, ErrNotFound
	}
	return r, nil
}

func (s *Store) GetRecipe(ctx context.Context, id string) (model.Recipe, error) {
	var doc []byte
	err := s.DB.QueryRowContext(ctx, `SELECT document FROM recipes WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Recipe{}, ErrNotFound
	}
	if err != nil {
		return model.Recipe{}, fmt.Errorf("get recipe: %w", err)
	}
	var r model.Recipe
	if err := json.Unmarshal(doc, &r); err != nil {
		return model.Recipe{}, fmt.Errorf("decode recipe %s: %w", id, err)
	}
	return r, nil
}

func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecipes returns every recipe, newest first.
func (s *Store) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT document FROM recipes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	out := make([]model.Recipe, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var r model.Recipe
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, fmt.Errorf("decode recipe: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetMealPlan returns the plan stored for date (YYYY-MM-DD).
func (s *Store) GetMealPlan(ctx context.Context, date string) (model.MealPlan, error) {
	var doc []byte
	err := s.DB.QueryRowContext(ctx, `SELECT document FROM meal_plans WHERE plan_date = $1`, date).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MealPlan{}, ErrNotFound
	}
	if err != nil {
		return model.MealPlan{}, fmt.Errorf("get meal plan: %w", err)
	}
	var p model.MealPlan
	if err := json.Unmarshal(doc, &p); err != nil {
		return model.MealPlan{}, fmt.Errorf("decode meal plan %s: %w", date, err)
	}
	return p, nil
}

func (s *Store) UpsertMealPlan(ctx context.Context, p model.MealPlan) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO meal_plans (plan_date, updated_at, document)
		VALUES ($1, $2, $3)
		ON CONFLICT (plan_date) DO UPDATE
		SET updated_at = EXCLUDED.updated_at, document = EXCLUDED.document`,
		p.Date, p.UpdatedAt, doc)
	if err != nil {
		return fmt.Errorf("upsert meal plan: %w", err)
	}
	return nil
}

// ListMealPlans returns plans between from and to inclusive, by date.
func (s *Store) ListMealPlans(ctx context.Context, from, to string) ([]model.MealPlan, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT document FROM meal_plans
		WHERE plan_date BETWEEN $1 AND $2
		ORDER BY plan_date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list meal plans: %w", err)
	}
	defer rows.Close()

	out := make([]model.MealPlan, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var p model.MealPlan
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, fmt.Errorf("decode meal plan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ExtractionRecord is one row of the extraction log.
type ExtractionRecord struct {
	Mode       string
	Source     string
	Outcome    string
	Error      string
	RecipeID   string
	Output     *model.Recipe
	DurationMs int64
}

// RecordExtraction appends a row to the extraction log.
func (s *Store) RecordExtraction(ctx context.Context, rec ExtractionRecord) error {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	var output pqtype.NullRawMessage
	if rec.Output != nil {
		b, err := json.Marshal(rec.Output)
		if err != nil {
			return err
		}
		output = pqtype.NullRawMessage{RawMessage: b, Valid: true}
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO extractions (id, mode, source, outcome, error, recipe_id, output, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, rec.Mode, rec.Source, rec.Outcome,
		nullString(rec.Error), nullString(rec.RecipeID), output, rec.DurationMs)
	if err != nil {
		return fmt.Errorf("record extraction: %w", err)
	}
	return nil
}

func nullInt(p *int) sql.NullInt32 {
	if p == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*p), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// DeleteExpiredExtractions removes extraction log rows created before cutoff.
func (s *Store) DeleteExpiredExtractions(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM extractions WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired extractions: %w", err)
	}
	return res.RowsAffected()
}

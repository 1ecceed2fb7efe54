package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wouteroostervld/unitygraph/pkg/analyzer"
	"github.com/wouteroostervld/unitygraph/pkg/graph"
	"github.com/wouteroostervld/unitygraph/pkg/unity"
)

// AnalysisType is the analysis_type key of cached project analyses
const AnalysisType = "unity_project"

// PayloadVersion is bumped whenever the Payload encoding changes.
// Rows stored under another version are treated as missing.
const PayloadVersion = 1

// Payload is the serialized body of a cached analysis
type Payload struct {
	Structure *unity.ProjectStructure `json:"structure"`
	Summary   *graph.ProjectSummary   `json:"summary"`
	Report    analyzer.Report         `json:"report"`
}

// Analysis is one cached analysis row
type Analysis struct {
	ProjectID   string
	Type        string
	Version     int
	Fingerprint string
	CreatedAt   time.Time
	Payload     *Payload
}

// ProjectInfo is one row of ListProjects
type ProjectInfo struct {
	ProjectID   string
	Fingerprint string
	CreatedAt   time.Time
}

// Scan implements Scannable
func (p *ProjectInfo) Scan(rows *sql.Rows) error {
	var createdAt string
	if err := rows.Scan(&p.ProjectID, &p.Fingerprint, &createdAt); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	p.CreatedAt = t
	return nil
}

// SaveAnalysis stores payload for projectID, replacing any previous
// analysis and rebuilding the asset and edge index in one transaction.
func (s *Store) SaveAnalysis(ctx context.Context, projectID, fingerprint string, payload *Payload) error {
	if projectID == "" {
		return fmt.Errorf("project id cannot be empty")
	}
	if payload == nil || payload.Structure == nil {
		return fmt.Errorf("payload structure cannot be nil")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO analyses (project_id, analysis_type, version, fingerprint, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, analysis_type) DO UPDATE SET
			version = excluded.version,
			fingerprint = excluded.fingerprint,
			payload = excluded.payload,
			created_at = excluded.created_at
	`), projectID, AnalysisType, PayloadVersion, fingerprint, string(body), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to upsert analysis: %w", err)
	}

	if err := s.replaceIndex(ctx, tx, projectID, payload.Structure); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis: %w", err)
	}
	return nil
}

func (s *Store) replaceIndex(ctx context.Context, tx *sql.Tx, projectID string, structure *unity.ProjectStructure) error {
	for _, table := range []string{"asset_index", "asset_edges"} {
		if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM "+table+" WHERE project_id = ?"), projectID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	assetStmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO asset_index (project_id, guid, path, asset_type) VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare asset insert: %w", err)
	}
	defer assetStmt.Close()

	for _, a := range structure.Assets {
		if _, err := assetStmt.ExecContext(ctx, projectID, a.GUID, a.Path, string(a.Type)); err != nil {
			return fmt.Errorf("failed to index asset %s: %w", a.Path, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO asset_edges (project_id, source_guid, target_guid, edge_type) VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer edgeStmt.Close()

	for _, d := range structure.Dependencies {
		if _, err := edgeStmt.ExecContext(ctx, projectID, d.SourceGUID, d.TargetGUID, string(d.Type)); err != nil {
			return fmt.Errorf("failed to index edge %s->%s: %w", d.SourceGUID, d.TargetGUID, err)
		}
	}
	return nil
}

// LoadAnalysis returns the cached analysis of projectID. It returns
// ErrNotFound when none exists or it was stored under another PayloadVersion.
func (s *Store) LoadAnalysis(ctx context.Context, projectID string) (*Analysis, error) {
	a := &Analysis{}
	var (
		body      string
		createdAt string
	)
	err := s.conn.QueryRowContext(ctx, s.rebind(`
		SELECT project_id, analysis_type, version, fingerprint, payload, created_at
		FROM analyses
		WHERE project_id = ? AND analysis_type = ? AND version = ?
	`), projectID, AnalysisType, PayloadVersion).Scan(&a.ProjectID, &a.Type, &a.Version, &a.Fingerprint, &body, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis for %s: %w", projectID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}

	if a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}

	a.Payload = &Payload{}
	if err := json.Unmarshal([]byte(body), a.Payload); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return a, nil
}

// Fingerprint returns the fingerprint of the cached analysis of projectID
func (s *Store) Fingerprint(ctx context.Context, projectID string) (string, error) {
	var fp string
	err := s.conn.QueryRowContext(ctx, s.rebind(`
		SELECT fingerprint FROM analyses
		WHERE project_id = ? AND analysis_type = ? AND version = ?
	`), projectID, AnalysisType, PayloadVersion).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("analysis for %s: %w", projectID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get fingerprint: %w", err)
	}
	return fp, nil
}

// DeleteAnalysis removes the cached analysis and index of projectID
func (s *Store) DeleteAnalysis(ctx context.Context, projectID string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"analyses", "asset_index", "asset_edges"} {
		if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM "+table+" WHERE project_id = ?"), projectID); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// ListProjects returns every project with a current analysis, by project id
func (s *Store) ListProjects(ctx context.Context) ([]*ProjectInfo, error) {
	rows, err := s.conn.QueryContext(ctx, s.rebind(`
		SELECT project_id, fingerprint, created_at FROM analyses
		WHERE analysis_type = ? AND version = ?
		ORDER BY project_id
	`), AnalysisType, PayloadVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	return scanRows[ProjectInfo](rows)
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wouteroostervld/unitygraph/pkg/unity"
)

// IndexedAsset is one asset_index row
type IndexedAsset struct {
	GUID string
	Path string
	Type unity.AssetType
}

// Scan implements Scannable
func (a *IndexedAsset) Scan(rows *sql.Rows) error {
	var assetType string
	if err := rows.Scan(&a.GUID, &a.Path, &assetType); err != nil {
		return err
	}
	a.Type = unity.AssetType(assetType)
	return nil
}

// IndexedEdge is one asset_edges row
type IndexedEdge struct {
	Source string
	Target string
	Type   unity.DependencyType
}

// Scan implements Scannable
func (e *IndexedEdge) Scan(rows *sql.Rows) error {
	var edgeType string
	if err := rows.Scan(&e.Source, &e.Target, &edgeType); err != nil {
		return err
	}
	e.Type = unity.DependencyType(edgeType)
	return nil
}

// LookupAsset returns the indexed asset with guid
func (s *Store) LookupAsset(ctx context.Context, projectID, guid string) (*IndexedAsset, error) {
	a := &IndexedAsset{GUID: guid}
	var assetType string
	err := s.conn.QueryRowContext(ctx,
		s.rebind("SELECT path, asset_type FROM asset_index WHERE project_id = ? AND guid = ?"),
		projectID, guid,
	).Scan(&a.Path, &assetType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("asset %s: %w", guid, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lookup asset: %w", err)
	}
	a.Type = unity.AssetType(assetType)
	return a, nil
}

// Dependents returns the edges whose target is guid, ordered by source
func (s *Store) Dependents(ctx context.Context, projectID, guid string) ([]*IndexedEdge, error) {
	return s.queryEdges(ctx, `
		SELECT source_guid, target_guid, edge_type FROM asset_edges
		WHERE project_id = ? AND target_guid = ?
		ORDER BY source_guid, edge_type
	`, projectID, guid)
}

// Dependencies returns the edges whose source is guid, ordered by target
func (s *Store) Dependencies(ctx context.Context, projectID, guid string) ([]*IndexedEdge, error) {
	return s.queryEdges(ctx, `
		SELECT source_guid, target_guid, edge_type FROM asset_edges
		WHERE project_id = ? AND source_guid = ?
		ORDER BY target_guid, edge_type
	`, projectID, guid)
}

func (s *Store) queryEdges(ctx context.Context, query string, args ...any) ([]*IndexedEdge, error) {
	rows, err := s.conn.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	return scanRows[IndexedEdge](rows)
}

// CountAssets returns the number of indexed assets of projectID
func (s *Store) CountAssets(ctx context.Context, projectID string) (int64, error) {
	return s.count(ctx, "asset_index", projectID)
}

// CountEdges returns the number of indexed edges of projectID
func (s *Store) CountEdges(ctx context.Context, projectID string) (int64, error) {
	return s.count(ctx, "asset_edges", projectID)
}

func (s *Store) count(ctx context.Context, table, projectID string) (int64, error) {
	var n int64
	err := s.conn.QueryRowContext(ctx, s.rebind("SELECT COUNT(*) FROM "+table+" WHERE project_id = ?"), projectID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

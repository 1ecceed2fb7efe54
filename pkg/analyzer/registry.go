package analyzer

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/wouteroostervld/unitygraph/pkg/parser"
	"github.com/wouteroostervld/unitygraph/pkg/unity"
)

// AssetRegistry indexes the assets of one analysis pass by guid and path.
// It is single-writer: one pass populates it, then it is only read.
type AssetRegistry struct {
	byGUID map[string]*unity.Asset
	byPath map[string]*unity.Asset
	order  []*unity.Asset
}

// NewAssetRegistry creates an empty registry
func NewAssetRegistry() *AssetRegistry {
	return &AssetRegistry{
		byGUID: make(map[string]*unity.Asset),
		byPath: make(map[string]*unity.Asset),
	}
}

// Register records the asset at assetPath described by meta. A guid that is
// already registered is taken over by the new path; the displaced path is
// returned as a DuplicateGUID.
func (r *AssetRegistry) Register(assetPath string, meta parser.MetaInfo, metaHash string) (*unity.Asset, *DuplicateGUID) {
	asset := &unity.Asset{
		ID:          uuid.NewString(),
		Path:        assetPath,
		Type:        unity.AssetTypeForPath(assetPath),
		GUID:        meta.GUID,
		ContentHash: metaHash,
		ParseMetadata: map[string]string{
			"fileFormatVersion": strconv.Itoa(meta.FileFormatVersion),
		},
	}

	var dup *DuplicateGUID
	if prev, ok := r.byGUID[meta.GUID]; ok {
		dup = &DuplicateGUID{GUID: meta.GUID, Kept: assetPath, Dropped: prev.Path}
		r.remove(prev)
	}
	if prev, ok := r.byPath[assetPath]; ok {
		r.remove(prev)
	}

	r.byGUID[asset.GUID] = asset
	r.byPath[asset.Path] = asset
	r.order = append(r.order, asset)
	return asset, dup
}

func (r *AssetRegistry) remove(a *unity.Asset) {
	delete(r.byGUID, a.GUID)
	delete(r.byPath, a.Path)
	for i, o := range r.order {
		if o == a {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// Lookup returns the asset registered under guid
func (r *AssetRegistry) Lookup(guid string) (*unity.Asset, bool) {
	a, ok := r.byGUID[guid]
	return a, ok
}

// ByPath returns the asset registered for a project-relative path
func (r *AssetRegistry) ByPath(assetPath string) (*unity.Asset, bool) {
	a, ok := r.byPath[assetPath]
	return a, ok
}

// Assets returns the registered assets in registration order
func (r *AssetRegistry) Assets() []*unity.Asset {
	out := make([]*unity.Asset, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered assets
func (r *AssetRegistry) Len() int {
	return len(r.order)
}

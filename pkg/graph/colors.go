package graph

import "github.com/wouteroostervld/unitygraph/pkg/unity"

var assetColors = map[unity.AssetType]string{
	unity.AssetScript:   "#4CAF50",
	unity.AssetScene:    "#2196F3",
	unity.AssetPrefab:   "#FF9800",
	unity.AssetShader:   "#9C27B0",
	unity.AssetMaterial: "#E91E63",
	unity.AssetTexture:  "#00BCD4",
	unity.AssetOther:    "#9E9E9E",
}

// ColorFor returns the display color of an asset type; unknown types get
// the color of "other".
func ColorFor(t unity.AssetType) string {
	if c, ok := assetColors[t]; ok {
		return c
	}
	return assetColors[unity.AssetOther]
}

package filter

import "testing"

func TestShouldCollectFile(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		include   []string
		exclude   []string
		blacklist []string
		whitelist []string
		want      bool
	}{
		{
			name:     "no filters - allow",
			filePath: "Assets/Scripts/Player.cs",
			want:     true,
		},
		{
			name:     "matches include glob - allow",
			filePath: "Assets/Scripts/Player.cs",
			include:  []string{"Assets/**/*.cs", "Assets/**/*.meta"},
			want:     true,
		},
		{
			name:     "outside include globs - reject",
			filePath: "Packages/manifest.json",
			include:  []string{"Assets/**"},
			want:     false,
		},
		{
			name:     "excluded directory - reject",
			filePath: "Assets/Plugins/Vendor/Lib.cs",
			exclude:  []string{"Assets/Plugins"},
			want:     false,
		},
		{
			name:     "excluded by any-depth glob - reject",
			filePath: "Assets/Art/Cache/thumb.png.meta",
			exclude:  []string{"**/Cache"},
			want:     false,
		},
		{
			name:      "matches blacklist, no whitelist - reject",
			filePath:  "Assets/Editor/Secret.cs",
			blacklist: []string{`/Editor/`},
			want:      false,
		},
		{
			name:      "matches blacklist AND whitelist - allow (whitelist exception)",
			filePath:  "Assets/Editor/Important.cs",
			blacklist: []string{`/Editor/`},
			whitelist: []string{`Important\.cs$`},
			want:      true,
		},
		{
			name:      "matches blacklist, whitelist doesn't match - reject",
			filePath:  "Assets/Editor/Other.cs",
			blacklist: []string{`/Editor/`},
			whitelist: []string{`Important\.cs$`},
			want:      false,
		},
		{
			name:      "invalid regex ignored",
			filePath:  "Assets/Player.cs",
			blacklist: []string{`(`},
			want:      true,
		},
		{
			name:     "whitelist does not override exclude",
			filePath: "Assets/Plugins/Important.cs",
			exclude:  []string{"Assets/Plugins/**"},
			whitelist: []string{
				`Important\.cs$`,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.include, tt.exclude, tt.blacklist, tt.whitelist)
			if got := r.ShouldCollectFile(tt.filePath); got != tt.want {
				t.Errorf("ShouldCollectFile(%s) = %v, want %v", tt.filePath, got, tt.want)
			}
		})
	}
}

func TestShouldVisitDirectory(t *testing.T) {
	tests := []struct {
		name    string
		dir     string
		include []string
		exclude []string
		want    bool
	}{
		{
			name: "root always visited",
			dir:  ".",
			exclude: []string{
				"**",
			},
			want: true,
		},
		{
			name:    "include globs do not prune directories",
			dir:     "Assets/Scripts",
			include: []string{"Assets/**/*.cs"},
			want:    true,
		},
		{
			name:    "excluded directory - reject",
			dir:     "Library",
			exclude: []string{"Library", "Temp"},
			want:    false,
		},
		{
			name:    "nested under excluded directory - reject",
			dir:     "Assets/Plugins/Vendor/",
			exclude: []string{"Assets/Plugins"},
			want:    false,
		},
		{
			name:    "different exclude - allow",
			dir:     "Assets/Scenes",
			exclude: []string{"Assets/Plugins", "Temp"},
			want:    true,
		},
		{
			name:    "invalid glob ignored",
			dir:     "Assets",
			exclude: []string{"[Assets"},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.include, tt.exclude, nil, nil)
			if got := r.ShouldVisitDirectory(tt.dir); got != tt.want {
				t.Errorf("ShouldVisitDirectory(%s) = %v, want %v", tt.dir, got, tt.want)
			}
		})
	}
}

func TestFilterOrder(t *testing.T) {
	// A file matching both blacklist and whitelist is allowed
	r := New(nil, nil, []string{`\.asset$`}, []string{`Important\.asset$`})

	if !r.ShouldCollectFile("Assets/Data/Important.asset") {
		t.Error("File matching both blacklist and whitelist should be allowed (whitelist provides exception)")
	}
	if r.ShouldCollectFile("Assets/Data/Other.asset") {
		t.Error("File matching only the blacklist should be rejected")
	}
}

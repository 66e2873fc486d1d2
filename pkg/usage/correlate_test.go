package usage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/importi/pkg/catalog"
	"github.com/gnana997/importi/pkg/extractor"
	"github.com/gnana997/importi/pkg/indexer"
	"github.com/gnana997/importi/pkg/util"
)

// --- helpers ---

func testIndex() *indexer.ProjectIndex {
	return &indexer.ProjectIndex{
		Files: []string{"app.ts", "models/user.ts", "models/admin.ts", "Profile.tsx", "Avatar.tsx"},
		Imports: map[string]extractor.ImportRecord{
			"app.ts":          {File: "app.ts", Names: []string{"UserProfile", "Profile"}},
			"models/user.ts":  {File: "models/user.ts"},
			"models/admin.ts": {File: "models/admin.ts", Names: []string{"Role"}},
			"Profile.tsx":     {File: "Profile.tsx", Names: []string{"Session"}},
			"Avatar.tsx":      {File: "Avatar.tsx"},
		},
		Exports: map[string][]extractor.ExportDeclaration{
			"models/user.ts": {
				{File: "models/user.ts", Name: "User", Kind: extractor.KindInterface, Line: 1},
				{File: "models/user.ts", Name: "Settings", Kind: extractor.KindTypeAlias, Line: 5},
			},
			"models/admin.ts": {
				{File: "models/admin.ts", Name: "Settings", Kind: extractor.KindTypeAlias, Line: 2},
				{File: "models/admin.ts", Name: "Role", Kind: extractor.KindTypeAlias, Line: 3},
			},
		},
		Components: []catalog.ComponentCandidate{
			{File: "Profile.tsx", Name: "Profile"},
			{File: "Avatar.tsx", Name: "Avatar"},
		},
	}
}

func buildProject(t *testing.T, files map[string]string) *indexer.ProjectIndex {
	t.Helper()
	src := t.TempDir()
	for name, content := range files {
		path := filepath.Join(src, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	logger := util.NewDiscardLogger()
	builder := indexer.NewBuilder(extractor.NewExtractor(extractor.DefaultConfig(), logger), nil, logger)
	index, _, err := builder.Build(context.Background(), src, indexer.DefaultBuildOptions(), nil)
	require.NoError(t, err)
	return index
}

func TestCorrelate_SubstringIsDefault(t *testing.T) {
	result, err := Correlate(testIndex(), "")
	require.NoError(t, err)

	// "User" is counted as used because "UserProfile" contains it.
	assert.Equal(t, []string{"Settings", "Settings"}, result.UnusedExports)
	assert.Equal(t, []string{"Avatar"}, result.UnusedComponents)
}

func TestCorrelate_ExactMode(t *testing.T) {
	result, err := Correlate(testIndex(), MatchExact)
	require.NoError(t, err)

	assert.Equal(t, []string{"User", "Settings", "Settings"}, result.UnusedExports)
	assert.Equal(t, []string{"Avatar"}, result.UnusedComponents)
}

func TestCorrelate_WordMode(t *testing.T) {
	result, err := Correlate(testIndex(), MatchWord)
	require.NoError(t, err)

	assert.Equal(t, []string{"User", "Settings", "Settings"}, result.UnusedExports)
}

func TestCorrelate_UnknownMode(t *testing.T) {
	_, err := Correlate(testIndex(), "fuzzy")
	assert.ErrorIs(t, err, ErrUnknownMatchMode)
}

func TestCorrelate_EmptyIndex(t *testing.T) {
	result, err := Correlate(&indexer.ProjectIndex{}, MatchSubstring)
	require.NoError(t, err)

	assert.NotNil(t, result.UnusedExports)
	assert.Empty(t, result.UnusedExports)
	assert.Empty(t, result.UnusedComponents)
}

func TestFindUnused_ShortCircuits(t *testing.T) {
	calls := 0
	counting := func(spec, name string) bool {
		calls++
		return spec == name
	}

	unused := FindUnused([]string{"A"}, []string{"A", "B", "C"}, counting)

	assert.Empty(t, unused)
	assert.Equal(t, 1, calls)
}

func TestFindUnused_KeepsOrderAndDuplicates(t *testing.T) {
	unused := FindUnused(
		[]string{"Zed", "Alpha", "Zed", "Used"},
		[]string{"Used"},
		mustMatcher(t, MatchSubstring),
	)
	assert.Equal(t, []string{"Zed", "Alpha", "Zed"}, unused)
}

func mustMatcher(t *testing.T, mode MatchMode) Matcher {
	t.Helper()
	m, err := MatcherFor(mode)
	require.NoError(t, err)
	return m
}

func TestCorrelate_EndToEnd_Point(t *testing.T) {
	index := buildProject(t, map[string]string{
		"types.ts": "export intraface Point { x: number }\n",
		"app.ts":   "import { Point } from './types';\n",
	})
	result, err := Correlate(index, MatchSubstring)
	require.NoError(t, err)
	assert.Empty(t, result.UnusedExports)

	index = buildProject(t, map[string]string{
		"types.ts": "export intraface Point { x: number }\n",
		"app.ts":   "const origin = { x: 0 };\n",
	})
	result, err = Correlate(index, MatchSubstring)
	require.NoError(t, err)
	assert.Equal(t, []string{"Point"}, result.UnusedExports)
}

func TestCorrelate_EndToEnd_UnusedComponent(t *testing.T) {
	index := buildProject(t, map[string]string{
		"Button.tsx": "export default function Button() { return null }\n",
		"app.ts":     "import { Card } from './Card';\n",
		"Card.tsx":   "export default function Card() { return null }\n",
	})

	result, err := Correlate(index, MatchSubstring)
	require.NoError(t, err)
	assert.Equal(t, []string{"Button"}, result.UnusedComponents)
}

func TestCorrelate_SelfUseIsNotUsage(t *testing.T) {
	index := buildProject(t, map[string]string{
		"types.ts": "export intraface Point { x: number }\nexport type Line = { a: Point; b: Point };\n",
	})

	result, err := Correlate(index, MatchSubstring)
	require.NoError(t, err)
	assert.Equal(t, []string{"Point", "Line"}, result.UnusedExports)
}

func TestCorrelate_DuplicateDeclarations(t *testing.T) {
	index := buildProject(t, map[string]string{
		"a.ts": "export type Id = string;\n",
		"b.ts": "export type Id = number;\n",
	})

	result, err := Correlate(index, MatchSubstring)
	require.NoError(t, err)
	assert.Equal(t, []string{"Id", "Id"}, result.UnusedExports)
}

package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolkachev/bsema/internal/text"
)

func buildTree() *Tree {
	doWork := &Symbol{
		Name:           "DoWork",
		Kind:           KindMethod,
		Range:          text.NewRange(2, 0, 6, 14),
		SelectionRange: text.NewRange(2, 10, 2, 16),
		Exported:       true,
	}
	helper := &Symbol{
		Name:           "ВспомогательныйМетод",
		Kind:           KindMethod,
		Range:          text.NewRange(10, 0, 14, 14),
		SelectionRange: text.NewRange(10, 10, 10, 30),
	}
	region := &Symbol{
		Name:     "Internal",
		Kind:     KindRegion,
		Range:    text.NewRange(8, 0, 15, 0),
		Children: []*Symbol{helper},
	}
	module := &Symbol{
		Name:     "CommonUtils",
		Kind:     KindModule,
		Range:    text.NewRange(0, 0, 20, 0),
		Children: []*Symbol{doWork, region},
	}
	return NewTree(module)
}

func TestTree_MethodSymbol(t *testing.T) {
	t.Parallel()

	tree := buildTree()

	t.Run("ExactCase", func(t *testing.T) {
		t.Parallel()
		sym, ok := tree.MethodSymbol("DoWork")
		require.True(t, ok)
		assert.Equal(t, "DoWork", sym.Name)
	})

	t.Run("FoldedCase", func(t *testing.T) {
		t.Parallel()
		sym, ok := tree.MethodSymbol("dowork")
		require.True(t, ok)
		assert.Equal(t, "DoWork", sym.Name)
	})

	t.Run("CyrillicFoldedCase", func(t *testing.T) {
		t.Parallel()
		sym, ok := tree.MethodSymbol("вспомогательныйметод")
		require.True(t, ok)
		assert.Equal(t, "ВспомогательныйМетод", sym.Name)
	})

	t.Run("NestedInRegion", func(t *testing.T) {
		t.Parallel()
		_, ok := tree.MethodSymbol("ВспомогательныйМетод")
		assert.True(t, ok)
	})

	t.Run("Unknown", func(t *testing.T) {
		t.Parallel()
		_, ok := tree.MethodSymbol("Missing")
		assert.False(t, ok)
	})
}

func TestTree_Flatten(t *testing.T) {
	t.Parallel()

	tree := buildTree()
	flat := tree.Flatten()

	require.Len(t, flat, 4)
	assert.Equal(t, KindModule, flat[0].Kind)
	assert.Len(t, tree.Methods(), 2)
}

func TestTree_EnclosingSymbol(t *testing.T) {
	t.Parallel()

	tree := buildTree()

	t.Run("InsideMethod", func(t *testing.T) {
		t.Parallel()
		sym := tree.EnclosingSymbol(text.Position{Line: 4, Character: 3})
		assert.Equal(t, "DoWork", sym.Name)
	})

	t.Run("RegionSkipped", func(t *testing.T) {
		t.Parallel()
		// Inside the region but between methods: falls back to the module.
		sym := tree.EnclosingSymbol(text.Position{Line: 8, Character: 1})
		assert.Equal(t, KindModule, sym.Kind)
	})

	t.Run("MethodInsideRegion", func(t *testing.T) {
		t.Parallel()
		sym := tree.EnclosingSymbol(text.Position{Line: 12, Character: 0})
		assert.Equal(t, "ВспомогательныйМетод", sym.Name)
	})

	t.Run("ModuleFallback", func(t *testing.T) {
		t.Parallel()
		sym := tree.EnclosingSymbol(text.Position{Line: 18, Character: 0})
		assert.Equal(t, KindModule, sym.Kind)
	})
}

package variant

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

type counted struct {
	id        int
	destroyed *int
}

func (c *counted) Destroy() {
	*c.destroyed++
}

type byValue struct {
	destroyed *int
}

func (b byValue) Destroy() {
	*b.destroyed++
}

type wide struct {
	a, b, c int64
}

func TestInline(t *testing.T) {
	var (
		storage   Storage[counted, wide]
		accessor  Inline[counted]
		destroyed int
	)

	accessor.Construct(storage.Inline(), counted{id: 7, destroyed: &destroyed})
	require.Equal(t, 7, accessor.Get(storage.Inline()).id)
	require.Zero(t, destroyed)

	accessor.Destroy(storage.Inline())
	require.Equal(t, 1, destroyed)
	require.Equal(t, counted{}, *storage.Inline())
}

func TestBoxed(t *testing.T) {
	var (
		storage   Storage[wide, counted]
		accessor  Boxed[counted]
		destroyed int
	)

	require.False(t, accessor.Live(storage.Boxed()))

	accessor.Construct(storage.Boxed(), counted{id: 3, destroyed: &destroyed})
	require.True(t, accessor.Live(storage.Boxed()))
	require.Equal(t, 3, accessor.Get(storage.Boxed()).id)

	accessor.Destroy(storage.Boxed())
	require.Equal(t, 1, destroyed)
	require.False(t, accessor.Live(storage.Boxed()))
}

func TestDestroyOnlyTouchesLiveAlternative(t *testing.T) {
	t.Run("inline live", func(t *testing.T) {
		var (
			storage                 Storage[counted, counted]
			inlineCount, boxedCount int
		)
		Inline[counted]{}.Construct(storage.Inline(), counted{destroyed: &inlineCount})
		Inline[counted]{}.Destroy(storage.Inline())

		require.Equal(t, 1, inlineCount)
		require.Zero(t, boxedCount)
		require.False(t, Boxed[counted]{}.Live(storage.Boxed()))
	})

	t.Run("boxed live", func(t *testing.T) {
		var (
			storage                 Storage[counted, counted]
			inlineCount, boxedCount int
		)
		Boxed[counted]{}.Construct(storage.Boxed(), counted{destroyed: &boxedCount})
		Boxed[counted]{}.Destroy(storage.Boxed())

		require.Zero(t, inlineCount)
		require.Equal(t, 1, boxedCount)
	})
}

func TestDestroyerShapes(t *testing.T) {
	t.Run("value receiver", func(t *testing.T) {
		var (
			slot  byValue
			count int
		)
		Inline[byValue]{}.Construct(&slot, byValue{destroyed: &count})
		Inline[byValue]{}.Destroy(&slot)
		require.Equal(t, 1, count)
	})

	t.Run("pointer alternative", func(t *testing.T) {
		var (
			slot  *counted
			count int
		)
		Inline[*counted]{}.Construct(&slot, &counted{destroyed: &count})
		Inline[*counted]{}.Destroy(&slot)
		require.Equal(t, 1, count)
		require.Nil(t, slot)
	})

	t.Run("interface alternative", func(t *testing.T) {
		var (
			slot  Destroyer
			count int
		)
		Inline[Destroyer]{}.Construct(&slot, &counted{destroyed: &count})
		Inline[Destroyer]{}.Destroy(&slot)
		require.Equal(t, 1, count)
		require.Nil(t, slot)
	})

	t.Run("plain value", func(t *testing.T) {
		slot := 42
		Inline[int]{}.Destroy(&slot)
		require.Zero(t, slot)
	})
}

func TestStorageLayout(t *testing.T) {
	var word uintptr
	require.Equal(t, unsafe.Sizeof(wide{})+unsafe.Sizeof(word), unsafe.Sizeof(Storage[wide, counted]{}))
	require.Equal(t, unsafe.Sizeof(counted{})+unsafe.Sizeof(word), unsafe.Sizeof(Storage[counted, wide]{}))

	// Accessors carry no state.
	require.Zero(t, unsafe.Sizeof(Inline[wide]{}))
	require.Zero(t, unsafe.Sizeof(Boxed[wide]{}))
}

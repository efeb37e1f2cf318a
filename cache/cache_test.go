package cache

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/matryer/is"

	"github.com/valarxu/mahjong-practice/tilemapping"
)

func TestGetPut(t *testing.T) {
	is := is.New(t)
	tbl := NewTable[int](0)
	h, _ := tilemapping.HandFromString("123m456s789p11z")

	_, ok := tbl.Get(&h)
	is.True(!ok)

	tbl.Put(&h, 42)
	v, ok := tbl.Get(&h)
	is.True(ok)
	is.Equal(v, 42)

	other := h
	other.Add(0)
	_, ok = tbl.Get(&other)
	is.True(!ok)

	st := tbl.Stats()
	is.Equal(st.Size, 1<<minSizePowerOf2)
	is.Equal(st.Lookups, uint64(3))
	is.Equal(st.Hits, uint64(1))
	is.Equal(st.Created, uint64(1))
}

func TestInvalidHandsSkipped(t *testing.T) {
	is := is.New(t)
	tbl := NewTable[string](0)
	var h tilemapping.Hand
	h[3] = 5
	tbl.Put(&h, "nope")
	_, ok := tbl.Get(&h)
	is.True(!ok)
	is.Equal(tbl.Stats().Created, uint64(0))
}

func TestReset(t *testing.T) {
	is := is.New(t)
	tbl := NewTable[int](0)
	h, _ := tilemapping.HandFromString("5z")
	tbl.Put(&h, 1)
	tbl.Reset(0)
	_, ok := tbl.Get(&h)
	is.True(!ok)
}

func TestConcurrentAccess(t *testing.T) {
	is := is.New(t)
	tbl := NewTable[int](0)
	var (
		wg         sync.WaitGroup
		mismatches atomic.Int32
	)
	for i := 0; i < tilemapping.NumKinds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var h tilemapping.Hand
			h[i] = 2
			tbl.Put(&h, i)
			// another goroutine may have overwritten the bucket, but a hit
			// must always be our own value.
			if v, ok := tbl.Get(&h); ok && v != i {
				mismatches.Add(1)
			}
		}()
	}
	wg.Wait()
	is.Equal(mismatches.Load(), int32(0))
}

func TestKeyedAccess(t *testing.T) {
	is := is.New(t)
	tbl := NewTable[int](0)
	h, _ := tilemapping.HandFromString("123m456s789p1z")
	key := tbl.Key(&h)

	drawn := h
	drawn.Add(27)
	drawKey, ok := tbl.KeyAfterAdd(key, &h, 27)
	is.True(ok)
	is.Equal(drawKey, tbl.Key(&drawn))

	tbl.PutKeyed(drawKey, &drawn, 7)
	v, ok := tbl.Get(&drawn)
	is.True(ok)
	is.Equal(v, 7)

	back, ok := tbl.KeyAfterTake(drawKey, &drawn, 27)
	is.True(ok)
	is.Equal(back, key)
	_, ok = tbl.GetKeyed(back, &h)
	is.True(!ok)

	_, ok = tbl.KeyAfterTake(key, &h, 33)
	is.True(!ok)
	four, _ := tilemapping.HandFromString("1111z")
	_, ok = tbl.KeyAfterAdd(tbl.Key(&four), &four, 27)
	is.True(!ok)

	var bad tilemapping.Hand
	bad[0] = 5
	tbl.PutKeyed(1, &bad, 1)
	is.Equal(tbl.Stats().Created, uint64(1))
}

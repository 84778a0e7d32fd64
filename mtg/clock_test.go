package mtg

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type propertyMap map[string][]byte

func (m propertyMap) WriteProperty(key, val []byte) error {
	m[string(key)] = append([]byte{}, val...)
	return nil
}

func (m propertyMap) ReadProperty(key []byte) ([]byte, error) {
	return m[string(key)], nil
}

func TestClock(t *testing.T) {
	require := require.New(t)
	store := make(propertyMap)

	clock, err := NewClock(store)
	require.Nil(err)
	prev := clock.Now()
	for i := 0; i < 16; i++ {
		now := clock.Now()
		require.True(now.After(prev))
		prev = now
	}
	saved := store[clockStorePropertyKey]
	require.Len(saved, 8)
	require.Equal(uint64(prev.UnixNano()), binary.BigEndian.Uint64(saved))

	future := time.Now().Add(50 * time.Millisecond)
	store[clockStorePropertyKey] = binary.BigEndian.AppendUint64(nil, uint64(future.UnixNano()))
	clock, err = NewClock(store)
	require.Nil(err)
	require.True(clock.Now().After(future))
}

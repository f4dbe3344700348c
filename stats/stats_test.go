package stats

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestBuilderBuildDeltaAccumulatesAndResets(t *testing.T) {
	peer := uuid.New()
	b := NewBuilder(peer, nil)
	b.RecordDocFrequencyChange("word", "hello", 3)
	b.RecordDocFrequencyChange("word", "hello", -1)
	b.RecordDocFrequencyChange("word", "world", 5)
	b.RecordNofDocsChange(2)

	msg := b.BuildDelta()
	require.Equal(t, peer, msg.PeerID)
	require.Equal(t, KindDelta, msg.Kind)
	require.Equal(t, int64(2), msg.NofDocsDelta)
	require.ElementsMatch(t, []DocFrequencyChange{
		{Type: "word", Term: "hello", Delta: 2},
		{Type: "word", Term: "world", Delta: 5},
	}, msg.Changes)

	again := b.BuildDelta()
	require.Empty(t, again.Changes)
	require.Equal(t, int64(0), again.NofDocsDelta)
	require.Greater(t, again.Timestamp, msg.Timestamp)
}

func TestBuilderBuildSnapshotSignsChanges(t *testing.T) {
	b := NewBuilder(uuid.New(), nil)
	current := map[TypeTerm]int64{{Type: "word", Term: "hello"}: 7}

	reg := b.BuildSnapshot(1, current, 42)
	require.Equal(t, KindSnapshot, reg.Kind)
	require.Equal(t, []DocFrequencyChange{{Type: "word", Term: "hello", Delta: 7}}, reg.Changes)
	require.Equal(t, int64(42), reg.NofDocsDelta)

	dereg := b.BuildSnapshot(-1, current, 42)
	require.Equal(t, []DocFrequencyChange{{Type: "word", Term: "hello", Delta: -7}}, dereg.Changes)
	require.Equal(t, int64(-42), dereg.NofDocsDelta)
}

func TestMessageEncodeDecodeRoundtrips(t *testing.T) {
	msg := Message{
		PeerID:       uuid.New(),
		Kind:         KindDelta,
		Timestamp:    9,
		NofDocsDelta: 3,
		Changes:      []DocFrequencyChange{{Type: "word", Term: "hello", Delta: 2}},
	}
	blob, err := msg.Encode()
	require.NoError(t, err)
	decoded, err := DecodeMessage(blob)
	require.NoError(t, err)
	require.Equal(t, msg, decoded)
}

func TestStoragePutMessageAggregatesAcrossPeers(t *testing.T) {
	s := NewStorage(nil)
	p1, p2 := uuid.New(), uuid.New()

	applied, err := s.PutMessage(Message{PeerID: p1, Timestamp: 1, Changes: []DocFrequencyChange{{Type: "word", Term: "hello", Delta: 3}}, NofDocsDelta: 2})
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = s.PutMessage(Message{PeerID: p2, Timestamp: 1, Changes: []DocFrequencyChange{{Type: "word", Term: "hello", Delta: 4}}, NofDocsDelta: 5})
	require.NoError(t, err)
	require.True(t, applied)

	require.Equal(t, int64(7), s.DocumentFrequency("word", "hello"))
	require.Equal(t, int64(7), s.NofDocuments())
	require.Equal(t, int64(1), s.StorageTimestamp(p1))
}

func TestStoragePutMessageRejectsStaleTimestamp(t *testing.T) {
	s := NewStorage(nil)
	p1 := uuid.New()

	applied, err := s.PutMessage(Message{PeerID: p1, Timestamp: 5, Changes: []DocFrequencyChange{{Type: "word", Term: "hello", Delta: 3}}})
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = s.PutMessage(Message{PeerID: p1, Timestamp: 5, Changes: []DocFrequencyChange{{Type: "word", Term: "hello", Delta: 100}}})
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, int64(3), s.DocumentFrequency("word", "hello"))

	applied, err = s.PutMessage(Message{PeerID: p1, Timestamp: 6, Changes: []DocFrequencyChange{{Type: "word", Term: "hello", Delta: 1}}})
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, int64(4), s.DocumentFrequency("word", "hello"))
}

func TestStorageDropsZeroOrNegativeDocumentFrequency(t *testing.T) {
	s := NewStorage(nil)
	p1 := uuid.New()
	_, err := s.PutMessage(Message{PeerID: p1, Timestamp: 1, Changes: []DocFrequencyChange{{Type: "word", Term: "hello", Delta: 3}}})
	require.NoError(t, err)
	_, err = s.PutMessage(Message{PeerID: p1, Timestamp: 2, Changes: []DocFrequencyChange{{Type: "word", Term: "hello", Delta: -3}}})
	require.NoError(t, err)
	require.Equal(t, int64(0), s.DocumentFrequency("word", "hello"))
}

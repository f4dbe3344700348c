package bytekv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig("path=/data/index;acl=true;cache=lru;statsproc=peer1;extra=val")
	require.NoError(t, err)
	require.Equal(t, "/data/index", cfg.Path)
	require.True(t, cfg.Acl)
	require.Equal(t, "lru", cfg.Cache)
	require.Equal(t, "peer1", cfg.StatsProc)
	require.Equal(t, "val", cfg.Extra["extra"])
}

func TestParseConfigInvalidAcl(t *testing.T) {
	_, err := ParseConfig("acl=maybe")
	require.Error(t, err)
	require.True(t, Is(err, ErrProtocol))
}

func TestConfigStringRoundTrip(t *testing.T) {
	cfg := Config{Path: "/tmp/db", Acl: true}
	parsed, err := ParseConfig(cfg.String())
	require.NoError(t, err)
	require.Equal(t, cfg.Path, parsed.Path)
	require.Equal(t, cfg.Acl, parsed.Acl)
}

func TestParseMetadataColumns(t *testing.T) {
	cols, err := ParseMetadataColumns("date u32, rank f32, flag u8")
	require.NoError(t, err)
	require.Len(t, cols, 3)
	require.Equal(t, MetadataColumn{Name: "date", Type: "u32"}, cols[0])
	require.Equal(t, MetadataColumn{Name: "rank", Type: "f32"}, cols[1])
	require.Equal(t, MetadataColumn{Name: "flag", Type: "u8"}, cols[2])
}

func TestParseMetadataColumnsRejectsUnknownType(t *testing.T) {
	_, err := ParseMetadataColumns("date u64")
	require.Error(t, err)
	require.True(t, Is(err, ErrProtocol))
}

package keeper

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonsurance/core/internal/config"
	"github.com/tonsurance/core/internal/market"
)

func TestEncodeArchivePayloadGzipRoundTrips(t *testing.T) {
	records := []PublishRecord{
		{
			Product:      depegProduct(),
			Multiplier:   market.MultiplierComponents{BaseBps: 10000, TotalBps: 10500},
			SwingPremium: market.SwingPremium{BasePremium: 1234.5},
		},
	}
	now := time.Unix(1700000000, 0)

	body, checksum, err := encodeArchivePayload(StrategyFull, records, now)
	require.NoError(t, err)
	assert.NotEmpty(t, checksum)

	gz, err := gzip.NewReader(bytes.NewReader(body))
	require.NoError(t, err)
	raw, err := io.ReadAll(gz)
	require.NoError(t, err)

	var decoded archivePayload
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "full", decoded.Metadata.Strategy)
	assert.Equal(t, 1, decoded.Metadata.RecordCount)
	assert.Equal(t, checksum, decoded.Metadata.Checksum)
	require.Len(t, decoded.Records, 1)
	assert.Equal(t, records[0].Product, decoded.Records[0].Product)
	assert.InDelta(t, 1234.5, decoded.Records[0].SwingPremium.BasePremium, 1e-9)
}

func TestEncodeArchivePayloadChecksumStableForSameInput(t *testing.T) {
	records := []PublishRecord{{Product: depegProduct()}}
	now := time.Unix(1700000000, 0)

	_, checksum1, err := encodeArchivePayload(StrategyHot, records, now)
	require.NoError(t, err)
	_, checksum2, err := encodeArchivePayload(StrategyHot, records, now)
	require.NoError(t, err)

	assert.Equal(t, checksum1, checksum2)
}

func TestEncodeArchivePayloadEmptyRecordsStillProducesValidArchive(t *testing.T) {
	body, _, err := encodeArchivePayload(StrategyStale, nil, time.Unix(0, 0))
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}

func TestNewArchiverDisabledReturnsNilWithoutError(t *testing.T) {
	// config.Archive zero value has Enabled=false.
	a, err := NewArchiver(context.Background(), config.Archive{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestNewArchiverEnabledWithoutBucketReturnsNilWithoutError(t *testing.T) {
	a, err := NewArchiver(context.Background(), config.Archive{Enabled: true}, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, a)
}

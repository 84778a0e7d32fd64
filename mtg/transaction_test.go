package mtg

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/MixinNetwork/mixin/common"
	"github.com/stretchr/testify/require"
)

func TestEncodeMixinExtra(t *testing.T) {
	require := require.New(t)

	traceId := "c6d0c728-2624-429b-8e0d-d9d19b6592fa"
	s, err := encodeMixinExtra(traceId, "Pausable: paused")
	require.Nil(err)
	b, err := base64.RawURLEncoding.DecodeString(s)
	require.Nil(err)
	var p mixinExtraPack
	err = common.MsgpackUnmarshal(b, &p)
	require.Nil(err)
	require.Equal(traceId, p.T.String())
	require.Equal("Pausable: paused", p.M)

	extra := decodeMixinExtra(s)
	require.NotNil(extra)
	require.Equal(traceId, extra.T.String())
	require.Nil(decodeMixinExtra(""))
	require.Nil(decodeMixinExtra("KKC#PRESALE#1-5"))

	_, err = encodeMixinExtra("trace", "memo")
	require.NotNil(err)
	_, err = encodeMixinExtra(traceId, strings.Repeat("m", common.ExtraSizeLimit))
	require.NotNil(err)

	tx, extra := decodeTransactionWithExtra("not hex")
	require.Nil(tx)
	require.Nil(extra)
}

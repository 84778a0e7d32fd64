package main

import (
	"context"
	"testing"

	"github.com/MixinNetwork/kkc/kkc"
	"github.com/MixinNetwork/kkc/store"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"
)

func TestMessengerCommands(t *testing.T) {
	require := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.OpenBadger(ctx, t.TempDir())
	require.Nil(err)
	defer db.Close()

	owner := uuid.Must(uuid.NewV4()).String()
	alice := uuid.Must(uuid.NewV4()).String()
	bob := uuid.Must(uuid.NewV4()).String()
	contract, _, err := kkc.Deploy(db, owner)
	require.Nil(err)
	mw := &MessengerWorker{contract: contract}

	require.Equal("Ownable: caller is not the owner", mw.execute(ctx, alice, "mint "+alice+" 5"))
	require.Equal("Should be the positive value", mw.execute(ctx, owner, "mint "+alice+" 0"))
	require.Equal("Can't mint over 500 NFTs at once", mw.execute(ctx, owner, "mint "+alice+" 9223372036854775807"))
	require.Equal("Can't mint over 500 NFTs at once", mw.execute(ctx, owner, "mint "+alice+" 501"))
	require.Equal("ERC721: mint to the zero address", mw.execute(ctx, owner, "mint 00000000-0000-0000-0000-000000000000 1"))
	require.Equal("minted 1,2,3,4,5", mw.execute(ctx, owner, "MINT "+alice+" 5"))
	require.Equal("done", mw.execute(ctx, owner, "unrevealuri https://kkc.example/hidden/"))
	require.Equal("done", mw.execute(ctx, owner, "baseuri https://kkc.example/reveal/"))
	require.Equal("https://kkc.example/hidden/3", mw.execute(ctx, bob, "uri 3"))
	require.Equal("done", mw.execute(ctx, owner, "reveal on"))
	require.Equal("https://kkc.example/reveal/3", mw.execute(ctx, bob, "uri 3"))
	require.Equal("ERC721URIStorage: URI query for nonexistent token", mw.execute(ctx, bob, "uri 6"))
	require.Equal("done", mw.execute(ctx, owner, "price 0.075"))

	require.Equal("done", mw.execute(ctx, alice, "transfer "+bob+" 1"))
	require.Equal(bob, mw.execute(ctx, alice, "owner 1"))
	require.Equal(alice+" holds 4: 2,3,4,5", mw.execute(ctx, alice, "tokens"))
	require.Equal(bob+" holds 1: 1", mw.execute(ctx, alice, "tokens "+bob))
	require.Equal("ERC721: transfer caller is not owner nor approved", mw.execute(ctx, alice, "transfer "+bob+" 1"))

	require.Equal("done", mw.execute(ctx, alice, "operator "+bob+" on"))
	require.True(contract.IsApprovedForAll(alice, bob))
	require.Equal("done", mw.execute(ctx, alice, "approve "+bob+" 2"))

	require.Equal("done", mw.execute(ctx, owner, "pause"))
	require.Equal("Pausable: paused", mw.execute(ctx, owner, "pause"))
	require.Equal("Pausable: paused", mw.execute(ctx, alice, "buy 2"))
	require.Equal("Pausable: paused", mw.execute(ctx, alice, "buy 0"))
	require.Equal("done", mw.execute(ctx, owner, "unpause"))
	require.Equal("Pausable: not paused", mw.execute(ctx, owner, "unpause"))
	require.Equal("Can't buy over 20 NFTs", mw.execute(ctx, alice, "buy 25"))
	require.Equal("Should be the positive value", mw.execute(ctx, alice, "buy 0"))

	require.Equal("KKC total supply 5 last token id 5 price 0.075 paused false reveal true", mw.execute(ctx, bob, "supply"))
	require.Equal(commandUsage, mw.execute(ctx, bob, "hello"))
	require.Equal(commandUsage, mw.execute(ctx, bob, ""))
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/MixinNetwork/kkc/kkc"
	"github.com/MixinNetwork/kkc/mtg"
	"github.com/MixinNetwork/kkc/store"
	"github.com/MixinNetwork/mixin/logger"
	"github.com/pelletier/go-toml"
)

func main() {
	ctx := context.Background()

	bp := flag.String("d", "~/.mixin/kkc/data", "database directory path")
	cp := flag.String("c", "~/.mixin/kkc/config.toml", "configuration file path")
	owner := flag.String("deploy", "", "deploy the contract owned by this user id and exit")
	flag.Parse()

	*bp = expandHome(*bp)
	db, err := store.OpenBadger(ctx, *bp)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	if *owner != "" {
		contract, deployed, err := kkc.Deploy(db, *owner)
		if err != nil {
			panic(err)
		}
		if !deployed {
			logger.Printf("KKC already deployed, owner %s last token %d\n", contract.Owner(), contract.LastTokenId())
			return
		}
		logger.Printf("KKC deployed, owner %s\n", contract.Owner())
		return
	}

	contract, err := kkc.Load(db)
	if err != nil {
		panic(err)
	}

	*cp = expandHome(*cp)
	conf, err := mtg.Setup(*cp)
	if err != nil {
		panic(err)
	}
	assetId, err := readPriceAsset(*cp)
	if err != nil {
		panic(err)
	}

	group, err := mtg.BuildGroup(ctx, db, conf)
	if err != nil {
		panic(err)
	}
	group.AddWorker(NewPresaleWorker(group, contract, assetId))
	NewMessengerWorker(ctx, group, conf, contract, assetId)
	group.Run(ctx)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	usr, err := user.Current()
	if err != nil {
		panic(err)
	}
	return filepath.Join(usr.HomeDir, path[2:])
}

// readPriceAsset reads the asset presale payments are made in from the
// [kkc] section of the configuration file.
func readPriceAsset(path string) (string, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return "", err
	}
	id, _ := tree.Get("kkc.price-asset-id").(string)
	if id == "" {
		return "", fmt.Errorf("kkc.price-asset-id missing in %s", path)
	}
	return id, nil
}

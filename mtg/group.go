package mtg

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/fox-one/mixin-sdk-go"
)

type Group struct {
	mixin   *mixin.Client
	store   Store
	clock   *Clock
	workers []Worker

	members   []string
	epoch     time.Time
	threshold int
	pin       string
}

func BuildGroup(ctx context.Context, store Store, conf *Configuration) (*Group, error) {
	grp, err := NewGroup(store, conf.Genesis.Members, conf.Genesis.Threshold)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(strings.Join(conf.Genesis.Members, ","), conf.App.ClientId) {
		return nil, fmt.Errorf("app %s not belongs to the group", conf.App.ClientId)
	}

	s := &mixin.Keystore{
		ClientID:   conf.App.ClientId,
		SessionID:  conf.App.SessionId,
		PrivateKey: conf.App.PrivateKey,
		PinToken:   conf.App.PinToken,
	}
	client, err := mixin.NewFromKeystore(s)
	if err != nil {
		return nil, err
	}
	err = client.VerifyPin(ctx, conf.App.PIN)
	if err != nil {
		return nil, err
	}
	grp.mixin = client
	grp.pin = conf.App.PIN
	grp.epoch = time.Unix(0, conf.Genesis.Timestamp)
	return grp, nil
}

// NewGroup sets up the output and transaction bookkeeping of the group
// over store. It has no client, so only BuildGroup returns a group that
// can Run.
func NewGroup(store Store, members []string, threshold int) (*Group, error) {
	if len(members) < threshold || threshold < 1 {
		return nil, fmt.Errorf("invalid group threshold %d %d", len(members), threshold)
	}
	clock, err := NewClock(store)
	if err != nil {
		return nil, err
	}
	members = append([]string{}, members...)
	sort.Strings(members)
	return &Group{
		store:     store,
		clock:     clock,
		members:   members,
		threshold: threshold,
	}, nil
}

func (grp *Group) GetMembers() []string {
	return append([]string{}, grp.members...)
}

func (grp *Group) GetThreshold() int {
	return grp.threshold
}

func (grp *Group) AddWorker(wkr Worker) {
	grp.workers = append(grp.workers, wkr)
}

func (grp *Group) Run(ctx context.Context) {
	logger.Printf("Group.Run(%v, %d) since %s\n", grp.members, grp.threshold, grp.epoch)
	for ctx.Err() == nil {
		grp.drainOutputs(ctx, 100)
		err := grp.handleActions(ctx, 16)
		if err != nil {
			logger.Printf("handleActions() => %v\n", err)
		}
		err = grp.signTransactions(ctx)
		if err != nil {
			logger.Printf("signTransactions() => %v\n", err)
		}
		err = grp.publishTransactions(ctx)
		if err != nil {
			logger.Printf("publishTransactions() => %v\n", err)
		}
		time.Sleep(time.Second)
	}
}

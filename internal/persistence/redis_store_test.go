package persistence

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/petrijr/sessionflow/internal/testutil"
	"github.com/petrijr/sessionflow/pkg/api"
)

const redisTestPrefix = "sessionflow:test:"

type RedisSlotTestSuite struct {
	suite.Suite
	client *redis.Client
	slot   *RedisSlot
}

func TestRedisSlotTestSuite(t *testing.T) {
	addr := testutil.GetRedisAddress(t)
	s := new(RedisSlotTestSuite)
	s.client = redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = s.client.Close() })
	s.slot = NewRedisSlot(s.client, redisTestPrefix)
	suite.Run(t, s)
}

func (r *RedisSlotTestSuite) SetupTest() {
	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, redisTestPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		r.Require().NoError(r.client.Del(ctx, iter.Val()).Err())
	}
	r.Require().NoError(iter.Err())
}

func (r *RedisSlotTestSuite) TestContract() {
	runSlotContract(r.T(), r.slot)
}

func (r *RedisSlotTestSuite) TestStateRoundTrip() {
	ctx := context.Background()
	st := NewStateStore(r.slot, "", nil)

	want := api.DomainState{DigitalAddress: "did:example:redis", ClientID: "cid"}
	r.Require().NoError(st.Save(ctx, want))
	r.Equal(want, st.Load(ctx))

	raw, err := r.client.Get(ctx, redisTestPrefix+"slot:"+DefaultStateKey).Bytes()
	r.Require().NoError(err)
	r.Contains(string(raw), `"digitalAddress":"did:example:redis"`)
}

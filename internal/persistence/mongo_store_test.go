package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/petrijr/sessionflow/internal/testutil"
	"github.com/petrijr/sessionflow/pkg/api"
)

type MongoSlotTestSuite struct {
	suite.Suite
	client *mongo.Client
	slot   *MongoSlot
}

const (
	mongoTestDB   = "sessionflow_test"
	mongoTestColl = "slots"
)

func TestMongoSlotTestSuite(t *testing.T) {
	uri := testutil.GetMongoURI(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("mongo.Connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	suite.Run(t, &MongoSlotTestSuite{
		client: client,
		slot:   NewMongoSlot(client, mongoTestDB, mongoTestColl),
	})
}

func (m *MongoSlotTestSuite) SetupTest() {
	err := m.client.Database(mongoTestDB).Collection(mongoTestColl).Drop(context.Background())
	m.Require().NoError(err)
}

func (m *MongoSlotTestSuite) TestContract() {
	runSlotContract(m.T(), m.slot)
}

func (m *MongoSlotTestSuite) TestStateRoundTrip() {
	ctx := context.Background()
	st := NewStateStore(m.slot, "session-a", nil)

	want := api.DomainState{DigitalAddress: "did:example:mongo", CredentialVerificationStarted: true}
	m.Require().NoError(st.Save(ctx, want))
	m.Equal(want, st.Load(ctx))

	other := NewStateStore(m.slot, "session-b", nil)
	m.True(other.Load(ctx).IsZero())
}

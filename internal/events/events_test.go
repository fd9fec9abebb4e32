package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-crowdfund/internal/adapter"
	"github.com/feral-file/ff-crowdfund/internal/domain"
	"github.com/feral-file/ff-crowdfund/internal/events"
	"github.com/feral-file/ff-crowdfund/internal/mocks"
)

type testPublisherMocks struct {
	ctrl   *gomock.Controller
	natsJS *mocks.MockNatsJetStream
	nc     *mocks.MockNatsConn
	js     *mocks.MockJetStream
}

func setupTestPublisher(t *testing.T) *testPublisherMocks {
	ctrl := gomock.NewController(t)
	return &testPublisherMocks{
		ctrl:   ctrl,
		natsJS: mocks.NewMockNatsJetStream(ctrl),
		nc:     mocks.NewMockNatsConn(ctrl),
		js:     mocks.NewMockJetStream(ctrl),
	}
}

func (m *testPublisherMocks) tearDown() {
	m.ctrl.Finish()
}

var testConfig = events.Config{
	URL:            "nats://localhost:4222",
	StreamName:     "CROWDFUND",
	MaxReconnects:  3,
	ReconnectWait:  time.Second,
	ConnectionName: "ff-crowdfund-test",
}

func TestNewPublisher_CreatesStream(t *testing.T) {
	m := setupTestPublisher(t)
	defer m.tearDown()

	m.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(m.nc, m.js, nil)
	m.js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cfg jetstream.StreamConfig) error {
			assert.Equal(t, "CROWDFUND", cfg.Name)
			assert.Equal(t, []string{"crowdfund.>"}, cfg.Subjects)
			return nil
		})

	pub, err := events.NewPublisher(context.Background(), testConfig, m.natsJS, adapter.NewCanonicalCodec())
	require.NoError(t, err)
	assert.NotNil(t, pub)
}

func TestNewPublisher_ConnectError(t *testing.T) {
	m := setupTestPublisher(t)
	defer m.tearDown()

	m.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(nil, nil, errors.New("connection refused"))

	_, err := events.NewPublisher(context.Background(), testConfig, m.natsJS, adapter.NewCanonicalCodec())
	assert.ErrorContains(t, err, "connection refused")
}

func TestNewPublisher_StreamErrorClosesConnection(t *testing.T) {
	m := setupTestPublisher(t)
	defer m.tearDown()

	m.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(m.nc, m.js, nil)
	m.js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).Return(errors.New("no permission"))
	m.nc.EXPECT().Close()

	_, err := events.NewPublisher(context.Background(), testConfig, m.natsJS, adapter.NewCanonicalCodec())
	assert.Error(t, err)
}

func TestPublisher_Publish(t *testing.T) {
	m := setupTestPublisher(t)
	defer m.tearDown()

	m.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(m.nc, m.js, nil)
	m.js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).Return(nil)

	pub, err := events.NewPublisher(context.Background(), testConfig, m.natsJS, adapter.NewCanonicalCodec())
	require.NoError(t, err)

	event := domain.Event{
		ID:        events.NewID(time.Unix(1700000000, 0)),
		Type:      domain.EventTypeProjectFunded,
		ProjectID: "p1",
		Timestamp: time.Unix(1700000000, 0).UTC(),
		Data:      domain.ProjectStatusData{Status: domain.ProjectStatusFunded, TotalFunded: 500000, IsSuccessful: true},
	}

	m.js.EXPECT().Publish(gomock.Any(), "crowdfund.project_funded", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
			assert.Contains(t, string(data), `"project_id":"p1"`)
			assert.Contains(t, string(data), `"status":"funded"`)
			assert.Len(t, opts, 1)
			return &jetstream.PubAck{Stream: "CROWDFUND", Sequence: 1}, nil
		})

	require.NoError(t, pub.Publish(context.Background(), event))

	m.nc.EXPECT().Close()
	pub.Close()
}

func TestPublisher_PublishError(t *testing.T) {
	m := setupTestPublisher(t)
	defer m.tearDown()

	m.natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(m.nc, m.js, nil)
	m.js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).Return(nil)
	m.js.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

	pub, err := events.NewPublisher(context.Background(), testConfig, m.natsJS, adapter.NewCanonicalCodec())
	require.NoError(t, err)

	err = pub.Publish(context.Background(), domain.Event{ID: "x", Type: domain.EventTypeVoted})
	assert.ErrorContains(t, err, "failed to publish event")
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "crowdfund.refund_failed", events.Subject(domain.EventTypeRefundFailed))
}

func TestNewID_Ordered(t *testing.T) {
	now := time.Unix(1700000000, 0)
	first := events.NewID(now)
	second := events.NewID(now)
	later := events.NewID(now.Add(time.Second))

	assert.Len(t, first, 26)
	assert.Less(t, first, second)
	assert.Less(t, second, later)
}

func TestMultiSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	failing := mocks.NewMockSink(ctrl)
	failing.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("down"))
	recorder := events.NewRecorder()

	sink := events.NewMultiSink(failing, recorder, events.NewLogSink())
	err := sink.Publish(context.Background(), domain.Event{ID: "1", Type: domain.EventTypeVoted})

	assert.ErrorContains(t, err, "down")
	assert.Equal(t, []domain.EventType{domain.EventTypeVoted}, recorder.Types())

	recorder.Reset()
	assert.Empty(t, recorder.Events())
}

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error

	declared []string
	bindings map[string]string
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	f.declared = append(f.declared, "exchange:"+name+":"+kind)
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	f.declared = append(f.declared, "queue:"+name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	if f.bindings == nil {
		f.bindings = map[string]string{}
	}
	f.bindings[name] = exchange + "/" + key
	return nil
}

type fakeAck struct {
	acked  int
	nacked int
}

func (a *fakeAck) Ack(uint64, bool) error {
	a.acked++
	return nil
}

func (a *fakeAck) Nack(uint64, bool, bool) error {
	a.nacked++
	return nil
}

func (a *fakeAck) Reject(uint64, bool) error {
	a.nacked++
	return nil
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) NotifyImport(ctx context.Context, to string, summary entity.ImportSummary) error {
	return m.Called(ctx, to, summary).Error(0)
}

type MockCRM struct{ mock.Mock }

func (m *MockCRM) SyncLead(ctx context.Context, lead *entity.Lead) (int, error) {
	args := m.Called(ctx, lead)
	return args.Int(0), args.Error(1)
}

func delivery(t *testing.T, ack *fakeAck, event entity.LeadEvent) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body}
}

func TestSetupTopology(t *testing.T) {
	ch := &fakeChannel{}

	require.NoError(t, setupTopology(ch))

	assert.Contains(t, ch.declared, "exchange:"+ExchangeName+":topic")
	assert.Contains(t, ch.declared, "queue:"+DLQName)
	assert.Equal(t, ExchangeName+"/"+BindingKey, ch.bindings[QueueName])
	assert.Equal(t, DLXName+"/"+DeadLetterKey, ch.bindings[DLQName])
}

func TestProducerRoutesByEventType(t *testing.T) {
	ch := &fakeChannel{}
	producer := NewProducer(ch)
	event := entity.LeadEvent{Type: entity.LeadCreated, BuyerID: "b-1", OccurredAt: time.Now().UTC()}

	require.NoError(t, producer.PublishLeadEvent(context.Background(), event))

	assert.Equal(t, ExchangeName, ch.exchange)
	assert.Equal(t, "lead.created", ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var decoded entity.LeadEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, "b-1", decoded.BuyerID)
}

func TestProducerWrapsPublishError(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}

	err := NewProducer(ch).PublishLeadEvent(context.Background(), entity.LeadEvent{Type: entity.LeadUpdated})

	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func TestWorkerNotifiesImporter(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	notifier := new(MockNotifier)
	summary := entity.ImportSummary{Inserted: 2, Errors: []entity.RowError{{Row: 3, Message: "Invalid city: InvalidCity"}}, Outcome: "partial"}
	notifier.On("NotifyImport", mock.Anything, "demo1@example.com", summary).Return(nil)

	w := NewWorker(nil, notifier, nil, logger)
	ack := &fakeAck{}
	w.Handle(context.Background(), delivery(t, ack, entity.LeadEvent{
		Type:   entity.LeadImported,
		Actor:  entity.Actor{ID: "user-1", Email: "demo1@example.com"},
		Import: &summary,
	}))

	notifier.AssertExpectations(t)
	assert.Equal(t, 1, ack.acked)
}

func TestWorkerDeadLettersFailedSync(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	crm := new(MockCRM)
	crm.On("SyncLead", mock.Anything, mock.Anything).Return(0, errors.New("kommo down"))

	w := NewWorker(nil, nil, crm, logger)
	ack := &fakeAck{}
	w.Handle(context.Background(), delivery(t, ack, entity.LeadEvent{
		Type: entity.LeadCreated,
		Lead: &entity.Lead{ID: "b-1"},
	}))

	assert.Equal(t, 0, ack.acked)
	assert.Equal(t, 1, ack.nacked)
}

func TestWorkerAcksWhenNothingConfigured(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	w := NewWorker(nil, nil, nil, logger)
	ack := &fakeAck{}

	w.Handle(context.Background(), delivery(t, ack, entity.LeadEvent{Type: entity.LeadUpdated}))
	w.Handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("not json")})

	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, 1, ack.nacked)
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWorker(consumerFunc(func() (<-chan amqp.Delivery, error) {
		return make(chan amqp.Delivery), nil
	}), nil, nil, logger)

	assert.NoError(t, w.Start(ctx))
}

type consumerFunc func() (<-chan amqp.Delivery, error)

func (f consumerFunc) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f()
}

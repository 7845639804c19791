package service

import (
	"context"

	"exchange-rate-monitor/internal/domain/model"
)

type MockRateSource struct {
	FetchRatesFunc func(ctx context.Context) (model.RateTable, error)
}

func (m *MockRateSource) FetchRates(ctx context.Context) (model.RateTable, error) {
	return m.FetchRatesFunc(ctx)
}

type MockMailer struct {
	SendFunc func(ctx context.Context, subject, body string) error
}

func (m *MockMailer) Send(ctx context.Context, subject, body string) error {
	return m.SendFunc(ctx, subject, body)
}

type MockMailReceiver struct {
	FetchUnseenFunc func(ctx context.Context) ([]model.InboundMessage, error)
	MarkSeenFunc    func(ctx context.Context, ids []string) error
}

func (m *MockMailReceiver) FetchUnseen(ctx context.Context) ([]model.InboundMessage, error) {
	return m.FetchUnseenFunc(ctx)
}

func (m *MockMailReceiver) MarkSeen(ctx context.Context, ids []string) error {
	if m.MarkSeenFunc == nil {
		return nil
	}
	return m.MarkSeenFunc(ctx, ids)
}

type MockDocumentStore struct {
	LoadFunc func(ctx context.Context) (*model.Document, error)
	SaveFunc func(ctx context.Context, doc *model.Document) error
}

func (m *MockDocumentStore) Load(ctx context.Context) (*model.Document, error) {
	return m.LoadFunc(ctx)
}

func (m *MockDocumentStore) Save(ctx context.Context, doc *model.Document) error {
	return m.SaveFunc(ctx, doc)
}

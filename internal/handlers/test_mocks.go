package handlers

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shukatsu-kanri/api/internal/enrich"
	"github.com/shukatsu-kanri/api/internal/models"
	"github.com/shukatsu-kanri/api/internal/query"
)

type repoMock struct {
	ListFn       func(ctx context.Context, p query.ListParams) ([]models.Company, error)
	SearchFn     func(ctx context.Context, keyword string) ([]models.Company, error)
	CreateFn     func(ctx context.Context, c *models.Company) (int64, error)
	GetByIDFn    func(ctx context.Context, id int64) (*models.Company, error)
	UpdateFn     func(ctx context.Context, id int64, p *models.CompanyPatch) (*models.Company, error)
	DeleteFn     func(ctx context.Context, id int64) (bool, error)
	StatisticsFn func(ctx context.Context) (*models.Statistics, error)
}

func (m *repoMock) List(ctx context.Context, p query.ListParams) ([]models.Company, error) {
	if m.ListFn == nil {
		return nil, errors.New("ListFn not set")
	}
	return m.ListFn(ctx, p)
}
func (m *repoMock) Search(ctx context.Context, keyword string) ([]models.Company, error) {
	if m.SearchFn == nil {
		return nil, errors.New("SearchFn not set")
	}
	return m.SearchFn(ctx, keyword)
}
func (m *repoMock) Create(ctx context.Context, c *models.Company) (int64, error) {
	if m.CreateFn == nil {
		return 0, errors.New("CreateFn not set")
	}
	return m.CreateFn(ctx, c)
}
func (m *repoMock) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	if m.GetByIDFn == nil {
		return nil, errors.New("GetByIDFn not set")
	}
	return m.GetByIDFn(ctx, id)
}
func (m *repoMock) Update(ctx context.Context, id int64, p *models.CompanyPatch) (*models.Company, error) {
	if m.UpdateFn == nil {
		return nil, errors.New("UpdateFn not set")
	}
	return m.UpdateFn(ctx, id, p)
}
func (m *repoMock) Delete(ctx context.Context, id int64) (bool, error) {
	if m.DeleteFn == nil {
		return false, errors.New("DeleteFn not set")
	}
	return m.DeleteFn(ctx, id)
}
func (m *repoMock) Statistics(ctx context.Context) (*models.Statistics, error) {
	if m.StatisticsFn == nil {
		return nil, errors.New("StatisticsFn not set")
	}
	return m.StatisticsFn(ctx)
}

type pubMock struct {
	PublishFn func(ctx context.Context, body string, headers amqp.Table) error
	CloseFn   func() error
}

func (p *pubMock) Publish(ctx context.Context, body string, headers amqp.Table) error {
	if p.PublishFn == nil {
		return nil
	}
	return p.PublishFn(ctx, body, headers)
}
func (p *pubMock) Close() error {
	if p.CloseFn == nil {
		return nil
	}
	return p.CloseFn()
}

type aiMock struct {
	SuggestFn func(ctx context.Context, companyName string) (*enrich.Suggestion, error)
}

func (m *aiMock) Suggest(ctx context.Context, companyName string) (*enrich.Suggestion, error) {
	if m.SuggestFn == nil {
		return nil, errors.New("SuggestFn not set")
	}
	return m.SuggestFn(ctx, companyName)
}

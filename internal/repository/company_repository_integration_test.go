//go:build integration
// +build integration

package repository

/*
	Run: go test -tags=integration -v ./internal/repository -count=1
*/

import (
	"context"
	"errors"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shukatsu-kanri/api/internal/db"
	"github.com/shukatsu-kanri/api/internal/models"
	"github.com/shukatsu-kanri/api/internal/query"
)

func strptr(s string) *string { return &s }

func startMongo(t *testing.T) *mongo.Client {
	t.Helper()
	ctx := context.Background()

	mongoC, err := mongodb.RunContainer(ctx, tc.WithImage("mongo:7"))
	if err != nil {
		t.Fatalf("start mongo: %v", err)
	}
	t.Cleanup(func() { _ = mongoC.Terminate(ctx) })

	uri, err := mongoC.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("conn string: %v", err)
	}
	client, err := db.NewMongoClient(uri)
	if err != nil {
		t.Fatalf("mongo client: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(ctx) })
	return client
}

func mustCreate(t *testing.T, repo *CompanyRepository, c models.Company) *models.Company {
	t.Helper()
	if c.Status == "" {
		c.Status = models.DefaultStatus
	}
	if c.Priority == 0 {
		c.Priority = models.DefaultPriority
	}
	if _, err := repo.Create(context.Background(), &c); err != nil {
		t.Fatalf("create %q: %v", c.CompanyName, err)
	}
	return &c
}

// Exercises the whole lifecycle: create -> get -> patch -> clear -> delete
func TestCompanyRepository_Integration_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := startMongo(t)
	repo := NewCompanyRepository(client.Database("testdb"))

	// 1) Create: ids start at 1 and increment
	a := mustCreate(t, repo, models.Company{CompanyName: "Acme", Industry: strptr("IT")})
	b := mustCreate(t, repo, models.Company{CompanyName: "Beta"})
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("ids: got %d, %d", a.ID, b.ID)
	}
	if !a.CreatedAt.Equal(a.UpdatedAt) {
		t.Fatalf("created_at != updated_at on create")
	}

	// 2) Get
	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CompanyName != "Acme" || got.Industry == nil || *got.Industry != "IT" {
		t.Fatalf("get mismatch: %#v", got)
	}

	// 3) Sparse patch: only supplied fields change, updated_at moves
	time.Sleep(5 * time.Millisecond) // keep the timestamps strictly ordered
	var patch models.CompanyPatch
	patch.Status = models.Optional[string]{Set: true, Valid: true, Value: models.StatusInterviewing}
	patch.InterviewCount = models.Optional[int]{Set: true, Valid: true, Value: 1}
	merged, err := repo.Update(ctx, a.ID, &patch)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if merged.Status != models.StatusInterviewing || merged.InterviewCount != 1 {
		t.Fatalf("patch not applied: %#v", merged)
	}
	if merged.CompanyName != "Acme" || merged.Industry == nil || *merged.Industry != "IT" {
		t.Fatalf("untouched fields changed: %#v", merged)
	}
	if !merged.UpdatedAt.After(merged.CreatedAt) {
		t.Fatalf("updated_at did not advance: %v %v", merged.CreatedAt, merged.UpdatedAt)
	}
	if !merged.CreatedAt.Equal(got.CreatedAt) {
		t.Fatalf("created_at changed on update")
	}

	// 4) Explicit null clears the field
	var clear models.CompanyPatch
	clear.Industry = models.Optional[string]{Set: true, Valid: false}
	merged, err = repo.Update(ctx, a.ID, &clear)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if merged.Industry != nil {
		t.Fatalf("industry should be cleared: %#v", merged.Industry)
	}

	// 5) Update on a missing id
	if _, err := repo.Update(ctx, 999, &patch); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	// 6) Delete, then delete again: found once, not found after
	found, err := repo.Delete(ctx, a.ID)
	if err != nil || !found {
		t.Fatalf("delete: found=%v err=%v", found, err)
	}
	if _, err := repo.GetByID(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
	found, err = repo.Delete(ctx, a.ID)
	if err != nil || found {
		t.Fatalf("second delete: found=%v err=%v", found, err)
	}

	// 7) Ids are never reused
	c := mustCreate(t, repo, models.Company{CompanyName: "Gamma"})
	if c.ID != 3 {
		t.Fatalf("id reuse: got %d", c.ID)
	}
}

func TestCompanyRepository_Integration_ListFilterSortPaginate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := startMongo(t)
	repo := NewCompanyRepository(client.Database("testdb"))

	mustCreate(t, repo, models.Company{CompanyName: "A", Status: "entered", Priority: 2, Salary: strptr("¥300,000")})
	mustCreate(t, repo, models.Company{CompanyName: "B", Status: "interviewing", Priority: 1})
	mustCreate(t, repo, models.Company{CompanyName: "C", Status: "interviewing", Priority: 1, Salary: strptr("¥250,000")})
	mustCreate(t, repo, models.Company{CompanyName: "D", Status: "rejected", Priority: 5})

	list := func(p query.ListParams) []models.Company {
		t.Helper()
		if err := p.Normalize(); err != nil {
			t.Fatalf("normalize: %v", err)
		}
		out, err := repo.List(ctx, p)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		return out
	}
	names := func(cs []models.Company) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.CompanyName
		}
		return out
	}

	// filters AND together
	status := "interviewing"
	prio := 1
	got := list(query.ListParams{Status: &status, Priority: &prio, SortBy: "id", Order: "asc"})
	if n := names(got); len(n) != 2 || n[0] != "B" || n[1] != "C" {
		t.Fatalf("AND filter: %v", n)
	}

	// ascending sort with id tiebreak: B and C share priority 1
	got = list(query.ListParams{SortBy: "priority", Order: "asc"})
	if n := names(got); len(n) != 4 || n[0] != "B" || n[1] != "C" || n[2] != "A" || n[3] != "D" {
		t.Fatalf("priority asc: %v", n)
	}

	// missing sort values go last in both directions
	got = list(query.ListParams{SortBy: "salary", Order: "asc"})
	if n := names(got); n[len(n)-2] != "B" || n[len(n)-1] != "D" {
		t.Fatalf("nulls last (asc): %v", n)
	}
	got = list(query.ListParams{SortBy: "salary", Order: "desc"})
	if n := names(got); n[len(n)-2] != "B" || n[len(n)-1] != "D" {
		t.Fatalf("nulls last (desc): %v", n)
	}

	// identical query, identical order
	first := names(list(query.ListParams{SortBy: "priority", Order: "asc"}))
	second := names(list(query.ListParams{SortBy: "priority", Order: "asc"}))
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("ordering not stable: %v vs %v", first, second)
		}
	}

	// offset/limit
	got = list(query.ListParams{SortBy: "id", Order: "asc", Skip: 1, Limit: 2})
	if n := names(got); len(n) != 2 || n[0] != "B" || n[1] != "C" {
		t.Fatalf("paging: %v", n)
	}
}

func TestCompanyRepository_Integration_SearchAndStatistics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := startMongo(t)
	repo := NewCompanyRepository(client.Database("testdb"))

	mustCreate(t, repo, models.Company{CompanyName: "Acme Corp", Status: "entered"})
	mustCreate(t, repo, models.Company{CompanyName: "ACME Industries", Status: "offer"})
	mustCreate(t, repo, models.Company{CompanyName: "Beta LLC", Status: "entered"})
	// non-canonical status still stored and counted in total
	mustCreate(t, repo, models.Company{CompanyName: "Gamma KK", Status: "withdrawn"})

	// case-insensitive substring match
	got, err := repo.Search(ctx, "acme")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("search acme: %#v", got)
	}
	// regex metacharacters are literal
	got, err = repo.Search(ctx, "a.c")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("dot must not be a wildcard: %#v", got)
	}

	stats, err := repo.Statistics(ctx)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.Total != 4 {
		t.Fatalf("total: %d", stats.Total)
	}
	if stats.ByStatus["entered"] != 2 || stats.ByStatus["offer"] != 1 {
		t.Fatalf("by_status: %#v", stats.ByStatus)
	}
	if _, ok := stats.ByStatus["withdrawn"]; ok {
		t.Fatalf("non-canonical status bucketed: %#v", stats.ByStatus)
	}
	var sum int64
	for _, v := range stats.ByStatus {
		sum += v
	}
	if sum != 3 {
		t.Fatalf("bucket sum: %d", sum)
	}
	if len(stats.ByStatus) != 5 {
		t.Fatalf("want the five canonical keys: %#v", stats.ByStatus)
	}
}
